package archive

import (
	"fmt"
	"path"
	"strings"
)

// fallbackName replaces names that carry no usable base.
const fallbackName = "image"

// EntryName reduces name to a flat base name safe to use as an archive entry
// or a file inside the output directory. Directory parts are dropped,
// with backslash treated as a separator, so "../x.jpg" becomes "x.jpg".
func EntryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	switch base {
	case "", ".", "..", "/":
		return fallbackName
	}
	return base
}

// SafeNames applies EntryName to every name and then UniqueNames.
func SafeNames(names []string) []string {
	flat := make([]string, len(names))
	for i, n := range names {
		flat[i] = EntryName(n)
	}
	return UniqueNames(flat)
}

// UniqueNames returns names with repeats disambiguated in input order. The
// first occurrence keeps its name; the k-th repeat gets "_k" inserted
// before its extension. A candidate that is already taken is skipped, so
// the result never contains duplicates.
func UniqueNames(names []string) []string {
	taken := make(map[string]struct{}, len(names))
	for _, n := range names {
		taken[n] = struct{}{}
	}

	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	repeats := make(map[string]int)
	for i, name := range names {
		if _, dup := used[name]; !dup {
			out[i] = name
			used[name] = struct{}{}
			continue
		}

		stem, ext := splitExt(name)
		for {
			repeats[name]++
			candidate := fmt.Sprintf("%s_%d%s", stem, repeats[name], ext)
			_, inUse := used[candidate]
			_, reserved := taken[candidate]
			if !inUse && !reserved {
				out[i] = candidate
				used[candidate] = struct{}{}
				break
			}
		}
	}
	return out
}

func splitExt(name string) (string, string) {
	ext := path.Ext(name)
	if ext == "" || ext == name || strings.HasSuffix(name, "/"+ext) {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
