package filter

import "github.com/gogpu/sketch/grid"

// Test helper functions shared across filter tests.

// uniformGrid creates a w×h grid filled with v.
func uniformGrid(w, h int, v float64) *grid.Grid {
	g := grid.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, v)
		}
	}
	return g
}

// rampGrid creates a grid whose value grows left to right.
func rampGrid(w, h int) *grid.Grid {
	g := grid.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, float64(x)/float64(w))
		}
	}
	return g
}

// absf returns the absolute value of a float64.
func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
