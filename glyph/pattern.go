package glyph

import (
	"image/color"
	"math"

	"github.com/gogpu/sketch/grid"
)

// digitPatterns are 3x5 bitmaps for the digits 0-9, one row per entry
// with the most significant of three bits on the left.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// PatternRenderer draws digits from fixed 3x5 block patterns. It needs no
// fonts and ignores the variant family, which makes it useful for tests
// and environments without font data. Variant.Size is the glyph height in
// pixels.
type PatternRenderer struct {
	cfg rendererConfig
}

// NewPatternRenderer creates a PatternRenderer.
func NewPatternRenderer(opts ...RendererOption) *PatternRenderer {
	return &PatternRenderer{cfg: applyRendererOptions(opts)}
}

// Render implements Renderer.
func (r *PatternRenderer) Render(label rune, v Variant) (*grid.Bitmap, error) {
	if label < '0' || label > '9' {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrMissingGlyph}
	}
	if v.Size <= 0 {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrInvalidSize}
	}

	cell := int(math.Max(1, math.Round(v.Size/5)))
	n := r.cfg.canvas
	w, h := 3*cell, 5*cell
	x0 := (n-w)/2 + v.Offset.X
	y0 := (n-h)/2 + v.Offset.Y

	out := grid.NewCanvas(n, n)
	ink := color.NRGBA{A: 255}
	for row, bits := range digitPatterns[label-'0'] {
		for col := 0; col < 3; col++ {
			if bits&(0b100>>col) == 0 {
				continue
			}
			out.FillRect(x0+col*cell, y0+row*cell, cell, cell, ink)
		}
	}
	return out, nil
}
