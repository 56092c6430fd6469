package glyph

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/sketch/grid"
)

// OutlineRenderer shapes a label with go-text/typesetting, loads the
// glyph's outline from the font and fills it with an anti-aliased vector
// rasterizer. The glyph's bounding box is centred on the canvas before
// the variant offset is applied.
type OutlineRenderer struct {
	lib    *Library
	shaper *Shaper
	cfg    rendererConfig
}

// NewOutlineRenderer creates an OutlineRenderer over lib. A nil lib uses
// a fresh Library with the embedded Go fonts.
func NewOutlineRenderer(lib *Library, opts ...RendererOption) *OutlineRenderer {
	if lib == nil {
		lib = NewLibrary()
	}
	return &OutlineRenderer{
		lib:    lib,
		shaper: NewShaper(),
		cfg:    applyRendererOptions(opts),
	}
}

// Render implements Renderer.
func (r *OutlineRenderer) Render(label rune, v Variant) (*grid.Bitmap, error) {
	if v.Size <= 0 {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrInvalidSize}
	}
	src, err := r.lib.Source(v.Family)
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}
	f, err := src.outlineFont()
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}

	shaped := r.shaper.Shape(string(label), src, v.Size)
	if len(shaped) == 0 || shaped[0].GID == 0 {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrMissingGlyph}
	}
	gid := sfnt.GlyphIndex(shaped[0].GID)
	ppem := fixed.Int26_6(v.Size * 64)

	var buf sfnt.Buffer
	bounds, _, err := f.GlyphBounds(&buf, gid, ppem, font.HintingNone)
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}
	segs, err := f.LoadGlyph(&buf, gid, ppem, nil)
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}

	n := r.cfg.canvas
	cx := (fromFixed(bounds.Min.X) + fromFixed(bounds.Max.X)) / 2
	cy := (fromFixed(bounds.Min.Y) + fromFixed(bounds.Max.Y)) / 2
	dx := float32(float64(n)/2 + float64(v.Offset.X) - cx)
	dy := float32(float64(n)/2 + float64(v.Offset.Y) - cy)

	rast := vector.NewRasterizer(n, n)
	rast.DrawOp = draw.Src
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(fromFixed(p.X)) + dx, float32(fromFixed(p.Y)) + dy
	}
	started := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				rast.ClosePath()
			}
			started = true
			x, y := pt(seg.Args[0])
			rast.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			rast.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			rast.QuadTo(bx, by, x, y)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			ex, ey := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			rast.CubeTo(bx, by, ex, ey, x, y)
		}
	}
	if started {
		rast.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, n, n))
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return inkFromCoverage(mask), nil
}
