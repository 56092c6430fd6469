package glyph

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/sketch/grid"
)

// TextRenderer draws labels with the x/image font.Drawer. It is simpler
// than OutlineRenderer and needs no shaping; glyph placement comes from
// the face's own bounds.
type TextRenderer struct {
	lib *Library
	cfg rendererConfig
}

// NewTextRenderer creates a TextRenderer over lib. A nil lib uses a fresh
// Library with the embedded Go fonts.
func NewTextRenderer(lib *Library, opts ...RendererOption) *TextRenderer {
	if lib == nil {
		lib = NewLibrary()
	}
	return &TextRenderer{lib: lib, cfg: applyRendererOptions(opts)}
}

// Render implements Renderer.
func (r *TextRenderer) Render(label rune, v Variant) (*grid.Bitmap, error) {
	if v.Size <= 0 {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrInvalidSize}
	}
	src, err := r.lib.Source(v.Family)
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}
	if !src.HasGlyph(label) {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrMissingGlyph}
	}
	f, err := src.outlineFont()
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}

	// opentype faces are not safe for concurrent use.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    v.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, &RenderError{Label: label, Variant: v, Err: err}
	}
	defer face.Close()

	bounds, _, ok := face.GlyphBounds(label)
	if !ok {
		return nil, &RenderError{Label: label, Variant: v, Err: ErrMissingGlyph}
	}

	n := r.cfg.canvas
	dst := image.NewNRGBA(image.Rect(0, 0, n, n))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	cx := (bounds.Min.X + bounds.Max.X) / 2
	cy := (bounds.Min.Y + bounds.Max.Y) / 2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(n/2+v.Offset.X) - cx,
			Y: fixed.I(n/2+v.Offset.Y) - cy,
		},
	}
	d.DrawString(string(label))
	return grid.FromImage(dst), nil
}
