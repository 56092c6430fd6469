package glyph

import (
	"fmt"
	"image"

	"github.com/gogpu/sketch/grid"
)

// DefaultCanvasSize is the side of the square bitmap glyphs are rendered
// into. It is large enough for the biggest default size plus offsets.
const DefaultCanvasSize = 64

// Variant selects one rendering of a label.
type Variant struct {
	// Family is the font family name (Library key).
	Family string

	// Size is the font size in pixels per em.
	Size float64

	// Offset shifts the glyph from the canvas centre, in pixels.
	Offset image.Point
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return fmt.Sprintf("%s/%.0fpx%+d%+d", v.Family, v.Size, v.Offset.X, v.Offset.Y)
}

// Renderer draws a label as dark ink on an opaque white bitmap.
//
// Implementations must be deterministic for a given environment and safe
// for concurrent use; the prototype bank renders variants in parallel.
type Renderer interface {
	Render(label rune, v Variant) (*grid.Bitmap, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(label rune, v Variant) (*grid.Bitmap, error)

// Render implements Renderer.
func (f RendererFunc) Render(label rune, v Variant) (*grid.Bitmap, error) {
	return f(label, v)
}

// RendererOption configures the built-in renderers.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	canvas int
}

func defaultRendererConfig() rendererConfig {
	return rendererConfig{canvas: DefaultCanvasSize}
}

// WithCanvasSize sets the side of the output bitmap. Values below 1 are
// ignored.
func WithCanvasSize(n int) RendererOption {
	return func(c *rendererConfig) {
		if n > 0 {
			c.canvas = n
		}
	}
}

func applyRendererOptions(opts []RendererOption) rendererConfig {
	c := defaultRendererConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// inkFromCoverage composites an alpha coverage mask as black ink over a
// white canvas.
func inkFromCoverage(mask *image.Alpha) *grid.Bitmap {
	b := mask.Bounds()
	out := grid.NewCanvas(b.Dx(), b.Dy())
	data := out.Data()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := mask.AlphaAt(b.Min.X+x, b.Min.Y+y).A
			i := (y*b.Dx() + x) * 4
			v := 255 - a
			data[i+0] = v
			data[i+1] = v
			data[i+2] = v
		}
	}
	return out
}
