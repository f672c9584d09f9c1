// Package codec converts between encoded raster bytes and in-memory images.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	xwebp "golang.org/x/image/webp"

	"resizer/internal/errs"
	"resizer/pkg/imgutil"
)

type decodeFunc func(io.Reader) (image.Image, error)

// MaxPixels bounds width×height of any input accepted by Decode, so a small
// header cannot force a huge allocation. 100 megapixels decode to at most
// 400 MB of RGBA.
const MaxPixels = 100_000_000

// gif.Decode returns the first frame of an animation.
var decoders = map[imgutil.Kind]decodeFunc{
	imgutil.KindJPEG: jpeg.Decode,
	imgutil.KindPNG:  png.Decode,
	imgutil.KindGIF:  gif.Decode,
	imgutil.KindWEBP: xwebp.Decode,
	imgutil.KindTIFF: tiff.Decode,
	imgutil.KindBMP:  bmp.Decode,
}

// Decode detects the container of data from its content and decodes it.
// An unrecognized signature yields KindUnsupportedFormat; a recognized
// container with a malformed payload yields KindCorruptData.
func Decode(data []byte) (img image.Image, err error) {
	kind := imgutil.Detect(data)
	decode, ok := decoders[kind]
	if !ok {
		return nil, errs.Newf(errs.KindUnsupportedFormat, "decode", "unrecognized image container")
	}

	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = errs.Newf(errs.KindCorruptData, "decode", "%s decoder panic: %v", kind, r)
		}
	}()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errs.New(errs.KindCorruptData, "decode", fmt.Errorf("%s: %w", kind, err))
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, errs.Newf(errs.KindCorruptData, "decode", "%s: %dx%d exceeds the %d pixel limit", kind, cfg.Width, cfg.Height, MaxPixels)
	}

	img, err = decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.New(errs.KindCorruptData, "decode", fmt.Errorf("%s: %w", kind, err))
	}
	if img.Bounds().Empty() {
		return nil, errs.Newf(errs.KindCorruptData, "decode", "%s: image has no pixels", kind)
	}
	return img, nil
}

// Probe reports the container kind and dimensions without decoding pixels.
func Probe(data []byte) (imgutil.Kind, image.Config, error) {
	kind := imgutil.Detect(data)
	if kind == imgutil.KindUnknown {
		return kind, image.Config{}, errs.Newf(errs.KindUnsupportedFormat, "probe", "unrecognized image container")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return kind, image.Config{}, errs.New(errs.KindCorruptData, "probe", fmt.Errorf("%s: %w", kind, err))
	}
	return kind, cfg, nil
}
