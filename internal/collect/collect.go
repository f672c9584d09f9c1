// Package collect turns command-line paths into a batch of source images.
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"resizer/internal/processor"
	"resizer/pkg/imgutil"
)

// Paths reads every named file, and every file under every named
// directory whose header is a known image. Files named explicitly are
// admitted whatever they contain. Anything under exclude is skipped.
// Sources keep the order the paths were given in; directory entries follow
// fs.WalkDir's lexical order.
func Paths(paths []string, exclude string) ([]processor.SourceImage, error) {
	var excludeAbs string
	if exclude != "" {
		abs, err := filepath.Abs(exclude)
		if err != nil {
			return nil, err
		}
		excludeAbs = filepath.Clean(abs)
	}

	var sources []processor.SourceImage
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			src, err := readSource(root, filepath.Base(root))
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
			continue
		}

		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}

		fsys := os.DirFS(absRoot)
		err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			full := filepath.Join(absRoot, path)
			if d.IsDir() {
				if excludeAbs != "" && path != "." && isWithin(full, excludeAbs) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			kind, err := imgutil.SniffFile(full)
			if err != nil {
				return err
			}
			if kind == imgutil.KindUnknown {
				return nil
			}

			src, err := readSource(full, filepath.ToSlash(path))
			if err != nil {
				return err
			}
			sources = append(sources, src)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return sources, nil
}

// readSource names the image by its path relative to the walked root,
// flattened so outputs land in a single directory.
func readSource(path, rel string) (processor.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return processor.SourceImage{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := strings.ReplaceAll(rel, "/", "_")
	return processor.NewSourceImage(name, data), nil
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
