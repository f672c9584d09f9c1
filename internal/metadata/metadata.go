// Package metadata reports what an input image carries besides pixels.
// Re-encoding discards all of it.
package metadata

import (
	"bytes"

	"resizer/internal/codec"
	"resizer/pkg/imgutil"
)

type Category string

const (
	CategoryGPS       Category = "GPS"
	CategoryDevice    Category = "Device Model"
	CategoryTimestamp Category = "Timestamp"
	CategorySerial    Category = "Serial Number"
	CategoryXMP       Category = "XMP"
	CategoryProfile   Category = "Color Profile"
)

// Report describes one input.
type Report struct {
	Name       string
	Kind       imgutil.Kind
	Width      int
	Height     int
	ExifTags   int
	Categories []Category
}

// Inspect probes data without decoding its pixels.
func Inspect(name string, data []byte) (Report, error) {
	kind, cfg, err := codec.Probe(data)
	report := Report{Name: name, Kind: kind, Width: cfg.Width, Height: cfg.Height}
	if err != nil {
		return report, err
	}

	var container containerAnalysis
	var exifBlob []byte
	switch kind {
	case imgutil.KindJPEG, imgutil.KindTIFF:
		exifBlob = data
	case imgutil.KindPNG:
		container, err = scanPNG(bytes.NewReader(data))
		exifBlob = container.Exif
	case imgutil.KindWEBP:
		container, err = scanWEBP(bytes.NewReader(data))
		exifBlob = container.Exif
	}
	if err != nil {
		return report, err
	}

	cats := container.categories()
	if len(exifBlob) > 0 {
		analysis, err := analyzeExif(exifBlob)
		if err != nil {
			return report, err
		}
		report.ExifTags = analysis.Tags
		cats = merge(cats, analysis.categories())
	}
	report.Categories = cats
	return report, nil
}

func merge(a, b []Category) []Category {
	seen := make(map[Category]struct{}, len(a)+len(b))
	out := make([]Category, 0, len(a)+len(b))
	for _, list := range [][]Category{a, b} {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
