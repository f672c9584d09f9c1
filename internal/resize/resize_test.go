package resize

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resizer/internal/fixture"
)

func TestTargetDimensions(t *testing.T) {
	cases := []struct {
		name                   string
		srcW, srcH, reqW, reqH int
		keep                   bool
		wantW, wantH           int
	}{
		{"landscape fit", 1920, 1080, 800, 600, true, 800, 450},
		{"portrait fit", 1080, 1920, 800, 600, true, 338, 600},
		{"upscale", 100, 50, 400, 400, true, 400, 200},
		{"square", 500, 500, 100, 300, true, 100, 100},
		{"stretch", 1920, 1080, 800, 600, false, 800, 600},
		{"stretch upscale", 10, 10, 100, 30, false, 100, 30},
		{"thin strip clamps to one", 10000, 1, 100, 100, true, 100, 1},
		{"tall strip clamps to one", 1, 10000, 100, 100, true, 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := TargetDimensions(tc.srcW, tc.srcH, tc.reqW, tc.reqH, tc.keep)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestTargetDimensionsAspectLaw(t *testing.T) {
	sizes := []int{1, 3, 17, 64, 333, 1024, 4001}
	requests := []int{1, 5, 50, 128, 800, 2000}

	for _, sw := range sizes {
		for _, sh := range sizes {
			for _, rw := range requests {
				for _, rh := range requests {
					w, h := TargetDimensions(sw, sh, rw, rh, true)
					require.GreaterOrEqual(t, w, 1)
					require.GreaterOrEqual(t, h, 1)
					require.LessOrEqual(t, w, rw)
					require.LessOrEqual(t, h, rh)

					scale := math.Min(float64(rw)/float64(sw), float64(rh)/float64(sh))
					require.LessOrEqual(t, math.Abs(float64(w)-float64(sw)*scale), 1.0)
					require.LessOrEqual(t, math.Abs(float64(h)-float64(sh)*scale), 1.0)

					w2, h2 := TargetDimensions(sw, sh, rw, rh, false)
					require.Equal(t, rw, w2)
					require.Equal(t, rh, h2)
				}
			}
		}
	}
}

func TestResampleDimensions(t *testing.T) {
	src := fixture.Gradient(64, 48)

	out := Resample(src, 10, 30)
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())

	out = Resample(src, 200, 100)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 100, out.Bounds().Dy())
}

func TestResampleSolidStaysSolid(t *testing.T) {
	c := color.NRGBA{R: 200, G: 40, B: 90, A: 255}
	out := Resample(fixture.Solid(33, 17, c), 7, 5)

	want := []uint8{c.R, c.G, c.B, c.A}
	for i := 0; i < len(out.Pix); i += 4 {
		require.Equal(t, want, out.Pix[i:i+4], "pixel %d", i/4)
	}
}

func TestResampleIsDeterministicAndPure(t *testing.T) {
	src := fixture.Gradient(50, 50)
	before := append([]uint8{}, src.Pix...)

	a := Resample(src, 21, 13)
	b := Resample(src, 21, 13)

	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, before, src.Pix)
}

func TestFilterIsBilinear(t *testing.T) {
	assert.Equal(t, 1.0, Filter.Support)
	assert.InDelta(t, 1.0, Filter.Kernel(0), 1e-9)
	assert.InDelta(t, 0.5, Filter.Kernel(0.5), 1e-9)
	assert.InDelta(t, 0.0, Filter.Kernel(1), 1e-9)
}
