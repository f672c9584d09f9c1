package codec

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"

	"resizer/internal/errs"
)

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// Encode writes img in format. quality maps 1:1 onto the JPEG 0-100 scale
// and is ignored for PNG and WEBP. img is only read.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errs.Newf(errs.KindEncode, "encode", "empty image")
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: clampQuality(quality)})
	case FormatPNG:
		err = pngEncoder.Encode(&buf, img)
	case FormatWEBP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality})
	default:
		return nil, errs.Newf(errs.KindEncode, "encode", "unsupported output format %q", string(format))
	}
	if err != nil {
		return nil, errs.New(errs.KindEncode, "encode "+string(format), err)
	}

	return buf.Bytes(), nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}
