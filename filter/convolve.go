package filter

import (
	"math"

	"github.com/gogpu/sketch/grid"
)

// zeroEpsilon is the largest magnitude NormalizeAbs treats as all-zero.
const zeroEpsilon = 1e-8

// Response is the raw output of a convolution. Unlike a Grid its values are
// unbounded and may be negative (edge kernels); use NormalizeAbs to bring it
// back into [0, 1].
type Response struct {
	width  int
	height int
	data   []float64
}

// Width returns the number of columns.
func (r *Response) Width() int {
	return r.width
}

// Height returns the number of rows.
func (r *Response) Height() int {
	return r.height
}

// At returns the value at (x, y), or 0 outside the response.
func (r *Response) At(x, y int) float64 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0
	}
	return r.data[y*r.width+x]
}

// MaxAbs returns the largest absolute value.
func (r *Response) MaxAbs() float64 {
	var m float64
	for _, v := range r.data {
		m = max(m, math.Abs(v))
	}
	return m
}

// Convolve applies k to every cell of g with reflect padding.
//
// Out-of-range indices are mirrored: i < 0 maps to -i-1 and i >= n maps to
// 2n-i-1, repeated until the index lands inside the grid. The output has
// the same shape as g.
func Convolve(g *grid.Grid, k Kernel) *Response {
	w, h := g.Width(), g.Height()
	out := &Response{width: w, height: h, data: make([]float64, w*h)}
	if w == 0 || h == 0 {
		return out
	}

	src := g.Raw()
	for y := 0; y < h; y++ {
		// Row indices are shared by the whole row.
		rows := [3]int{reflect(y-1, h) * w, y * w, reflect(y+1, h) * w}
		for x := 0; x < w; x++ {
			cols := [3]int{reflect(x-1, w), x, reflect(x+1, w)}

			var sum float64
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					sum += k[ky][kx] * src[rows[ky]+cols[kx]]
				}
			}
			out.data[y*w+x] = sum
		}
	}
	return out
}

// NormalizeAbs divides every absolute value by the largest absolute value,
// producing a Grid in [0, 1]. A response whose magnitude never reaches 1e-8
// maps to an all-zero grid.
func NormalizeAbs(r *Response) *grid.Grid {
	out := grid.New(r.width, r.height)
	m := r.MaxAbs()
	if m < zeroEpsilon {
		return out
	}

	inv := 1 / m
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			out.Set(x, y, math.Abs(r.data[y*r.width+x])*inv)
		}
	}
	return out
}

// MaxPool2 reduces g by taking the maximum of each non-overlapping 2×2
// block. Output dimensions are floor(w/2)×floor(h/2); a trailing odd row or
// column is dropped.
func MaxPool2(g *grid.Grid) *grid.Grid {
	w, h := g.Width()/2, g.Height()/2
	out := grid.New(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x*2, y*2
			m := max(
				g.At(sx, sy), g.At(sx+1, sy),
				g.At(sx, sy+1), g.At(sx+1, sy+1),
			)
			out.Set(x, y, m)
		}
	}
	return out
}

// reflect mirrors i into [0, n). n must be positive.
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		} else {
			i = 2*n - i - 1
		}
	}
	return i
}
