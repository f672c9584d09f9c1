// Package resize computes output geometry and resamples images.
package resize

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Filter is the resampling kernel used by Resample. imaging.Linear is a
// bilinear (tent) filter.
var Filter = imaging.Linear

// TargetDimensions returns the output size for a srcW×srcH image asked to
// fit reqW×reqH. Without keepAspect the request is returned unchanged. With
// keepAspect the image is scaled uniformly by the smaller of the two axis
// ratios; each side is rounded and kept within [1, requested].
func TargetDimensions(srcW, srcH, reqW, reqH int, keepAspect bool) (int, int) {
	if !keepAspect || srcW <= 0 || srcH <= 0 {
		return reqW, reqH
	}

	scale := math.Min(float64(reqW)/float64(srcW), float64(reqH)/float64(srcH))
	w := clamp(int(math.Round(float64(srcW)*scale)), 1, reqW)
	h := clamp(int(math.Round(float64(srcH)*scale)), 1, reqH)
	return w, h
}

// Resample returns a new w×h image. img is not modified.
func Resample(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, Filter)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
