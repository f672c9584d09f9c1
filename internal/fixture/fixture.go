// Package fixture builds small in-memory images for tests.
package fixture

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Gradient returns a w×h image whose colour varies along both axes.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: 0x80,
				A: 0xff,
			})
		}
	}
	return img
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Gradient(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func GIF(w, h int) []byte {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, Gradient(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func WEBP(w, h int) []byte {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, Gradient(w, h), &webp.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func BMP(w, h int) []byte {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, Gradient(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TIFF(w, h int) []byte {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, Gradient(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// AnimatedGIF returns a two-frame w×h GIF: first solid white, then solid
// black.
func AnimatedGIF(w, h int) []byte {
	pal := color.Palette{color.White, color.Black}
	frames := make([]*image.Paletted, 2)
	for i := range frames {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), pal)
		for j := range frame.Pix {
			frame.Pix[j] = uint8(i)
		}
		frames[i] = frame
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &gif.GIF{Image: frames, Delay: []int{10, 10}}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Corrupt returns a byte slice with a valid PNG signature and a truncated
// body.
func Corrupt() []byte {
	data := PNG(8, 8)
	return append([]byte{}, data[:20]...)
}
