package processor

import (
	"strings"

	"resizer/internal/codec"
)

const resizedSuffix = "_resized"

// OutputName derives the file name of a processed image: the last
// extension of originalName is dropped, then "_resized" and the canonical
// extension of format are appended. "photo.png" becomes
// "photo_resized.jpg" for JPEG output.
func OutputName(originalName string, format codec.Format) string {
	return stripExtension(originalName) + resizedSuffix + "." + format.Extension()
}

// stripExtension removes a trailing ".ext" where ext is non-empty and
// holds no '/'. Names ending in a bare dot are kept as-is.
func stripExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return name
	}
	if strings.ContainsRune(name[i+1:], '/') {
		return name
	}
	return name[:i]
}
