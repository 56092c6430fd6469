package prototype

import (
	"image"

	"github.com/gogpu/sketch/glyph"
)

// Labels are the classes every bank covers, in order.
var Labels = []rune{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}

// Plan enumerates the rendering variants of each label.
type Plan struct {
	Families []string
	Sizes    []float64
	Offsets  []image.Point
}

// DefaultPlan returns the standard plan: five Go font families, four sizes
// and a 3x3 grid of offsets, 180 variants per label.
func DefaultPlan() Plan {
	offsets := make([]image.Point, 0, 9)
	for _, dy := range []int{-2, 0, 2} {
		for _, dx := range []int{-2, 0, 2} {
			offsets = append(offsets, image.Pt(dx, dy))
		}
	}
	return Plan{
		Families: append([]string(nil), glyph.DefaultFamilies...),
		Sizes:    []float64{24, 32, 40, 48},
		Offsets:  offsets,
	}
}

// Len returns the number of variants per label.
func (p Plan) Len() int {
	return len(p.Families) * len(p.Sizes) * len(p.Offsets)
}

// Variants lists the plan's variants ordered by family, then size, then
// offset.
func (p Plan) Variants() []glyph.Variant {
	out := make([]glyph.Variant, 0, p.Len())
	for _, f := range p.Families {
		for _, s := range p.Sizes {
			for _, o := range p.Offsets {
				out = append(out, glyph.Variant{Family: f, Size: s, Offset: o})
			}
		}
	}
	return out
}
