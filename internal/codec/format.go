package codec

import (
	"fmt"
	"strings"

	"resizer/internal/errs"
)

// Format is an output encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
)

// Quality bounds for JPEG output.
const (
	MinQuality = 10
	MaxQuality = 100
)

// WebPQuality is the lossy quality used for every WEBP output.
const WebPQuality = 80

// Formats lists the supported output formats in display order.
var Formats = []Format{FormatJPEG, FormatPNG, FormatWEBP}

// ParseFormat accepts a format name case-insensitively. "jpg" is an alias
// for jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", errs.Configuration("parse format", "unsupported output format %q (want one of %s)", s, strings.Join(FormatNames(), ", "))
	}
}

// FormatNames returns Formats as strings, for help and error text.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// Extension returns the canonical file extension, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWEBP:
		return "webp"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	return fmt.Sprintf("image/%s", string(f))
}

// UsesQuality reports whether the caller's quality setting affects output.
func (f Format) UsesQuality() bool {
	return f == FormatJPEG
}
