// Package grid provides the raster buffers shared by every pipeline stage:
// single-channel intensity grids, RGBA capture bitmaps and pixel boxes.
package grid

import (
	"image"
	"image/color"
	"math"
)

// Grid is a row-major plane of intensities in [0, 1].
//
// Width and height are fixed at creation. Every write goes through Set,
// which clamps, so a Grid never holds a value outside [0, 1].
type Grid struct {
	width  int
	height int
	data   []float64
}

// New creates a zero-filled grid. Negative dimensions are treated as zero.
func New(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// FromValues creates a grid from row-major values, clamping each one.
// Missing trailing values are left at zero and extra values are ignored.
func FromValues(width, height int, values []float64) *Grid {
	g := New(width, height)
	n := min(len(values), len(g.data))
	for i := 0; i < n; i++ {
		g.data[i] = clamp01(values[i])
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// Len returns width*height.
func (g *Grid) Len() int {
	return len(g.data)
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool {
	return len(g.data) == 0
}

// At returns the value at (x, y), or 0 outside the grid.
func (g *Grid) At(x, y int) float64 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	return g.data[y*g.width+x]
}

// Set stores v clamped to [0, 1]. Writes outside the grid are ignored.
func (g *Grid) Set(x, y int, v float64) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.data[y*g.width+x] = clamp01(v)
}

// Values returns a copy of the row-major values.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.data))
	copy(out, g.data)
	return out
}

// Raw exposes the backing slice for read-only hot loops.
// Callers must not modify it.
func (g *Grid) Raw() []float64 {
	return g.data
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, data: make([]float64, len(g.data))}
	copy(c.data, g.data)
	return c
}

// Equal reports whether both grids have the same shape and identical values.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i, v := range g.data {
		if v != o.data[i] {
			return false
		}
	}
	return true
}

// Sum returns the total intensity.
func (g *Grid) Sum() float64 {
	var s float64
	for _, v := range g.data {
		s += v
	}
	return s
}

// Max returns the largest value, or 0 for an empty grid.
func (g *Grid) Max() float64 {
	var m float64
	for _, v := range g.data {
		if v > m {
			m = v
		}
	}
	return m
}

// CenterOfMass returns the intensity-weighted centroid in cell-centre
// coordinates: a single lit cell at (x, y) yields (x+0.5, y+0.5).
// ok is false when the grid carries no mass.
func (g *Grid) CenterOfMass() (cx, cy float64, ok bool) {
	var total, sx, sy float64
	for y := 0; y < g.height; y++ {
		row := g.data[y*g.width : (y+1)*g.width]
		for x, v := range row {
			total += v
			sx += v * (float64(x) + 0.5)
			sy += v * (float64(y) + 0.5)
		}
	}
	if total == 0 {
		return 0, 0, false
	}
	return sx / total, sy / total, true
}

// ToImage renders the grid as 8-bit gray where 1 is white.
func (g *Grid) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.width, g.height))
	for i, v := range g.data {
		img.Pix[i] = uint8(math.Round(v * 255))
	}
	return img
}

// ToInkImage renders the grid as dark ink on a white background.
func (g *Grid) ToInkImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.width, g.height))
	for i, v := range g.data {
		img.Pix[i] = uint8(math.Round((1 - v) * 255))
	}
	return img
}

// FromGray16 converts a 16-bit gray image into a grid, mapping 0xffff to 1.
func FromGray16(img *image.Gray16) *Grid {
	b := img.Bounds()
	g := New(b.Dx(), b.Dy())
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := img.Gray16At(b.Min.X+x, b.Min.Y+y)
			g.data[y*g.width+x] = float64(c.Y) / 0xffff
		}
	}
	return g
}

// ToGray16 converts the grid (or the r sub-rectangle of it) into a 16-bit
// gray image whose bounds start at the origin.
func (g *Grid) ToGray16(r image.Rectangle) *image.Gray16 {
	r = r.Intersect(image.Rect(0, 0, g.width, g.height))
	img := image.NewGray16(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			v := g.data[(r.Min.Y+y)*g.width+r.Min.X+x]
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 0xffff))})
		}
	}
	return img
}

// clamp01 clamps v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
