// Package preprocess turns a raw capture bitmap into the canonical 28×28
// ink grid shared by live input and the prototype bank.
//
// The pathway has three stages:
//
//   - Grayscale: RGBA bitmap to ink intensity (dark ink maps near 1)
//   - Locate: tight box around cells above the ink threshold
//   - Normalizer: crop, aspect-preserving rescale, centre in the frame
//
// All functions are pure and deterministic. Running the pathway twice on
// the same bitmap yields bit-identical grids.
package preprocess

import "github.com/gogpu/sketch/grid"

// Rec. 601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale converts a bitmap into an ink-intensity grid of the same size.
//
// Each pixel is composited over white by its alpha, reduced to luma and
// inverted, so dark ink on a light background maps to values near 1.
// A zero-size bitmap yields a zero-size grid.
func Grayscale(b *grid.Bitmap) *grid.Grid {
	w, h := b.Width(), b.Height()
	g := grid.New(w, h)
	data := b.Data()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			a := float64(data[i+3]) / 255
			rv := over(data[i+0], a)
			gv := over(data[i+1], a)
			bv := over(data[i+2], a)
			luma := lumaR*rv + lumaG*gv + lumaB*bv
			g.Set(x, y, 1-luma)
		}
	}
	return g
}

// over composites a channel value with alpha a over white, in [0, 1].
func over(c uint8, a float64) float64 {
	return float64(c)/255*a + (1 - a)
}
