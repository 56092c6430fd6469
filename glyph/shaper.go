package glyph

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ShapedGlyph is a glyph positioned by the shaper. X and Y are the pen
// offsets in pixels relative to the start of the run, with Y pointing up.
type ShapedGlyph struct {
	GID      uint16
	X, Y     float64
	XAdvance float64
}

// Shaper maps text to positioned glyphs using go-text/typesetting's
// HarfBuzz port.
//
// Shaper is safe for concurrent use. Parsed fonts are cached per
// FontSource; font.Face and HarfbuzzShaper are not concurrent-safe, so a
// face is created per call and shapers are pooled.
type Shaper struct {
	pool sync.Pool

	mu    sync.RWMutex
	fonts map[*FontSource]*font.Font
}

// NewShaper creates a Shaper with an empty font cache.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		fonts: make(map[*FontSource]*font.Font),
	}
}

// Shape lays out text left to right at size pixels per em. It returns nil
// for empty text or when the font cannot be parsed by go-text.
func (s *Shaper) Shape(text string, src *FontSource, size float64) []ShapedGlyph {
	if text == "" || src == nil || size <= 0 {
		return nil
	}
	f, err := s.font(src)
	if err != nil {
		return nil
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f),
		Size:      fixed.Int26_6(size * 64),
		Script:    language.LookupScript(runes[0]),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.pool.Put(hb)

	if len(out.Glyphs) == 0 {
		return nil
	}
	glyphs := make([]ShapedGlyph, len(out.Glyphs))
	var x float64
	for i, g := range out.Glyphs {
		adv := fromFixed(g.Advance)
		glyphs[i] = ShapedGlyph{
			GID:      uint16(g.GlyphID), //nolint:gosec // glyph IDs fit in uint16 for TrueType fonts
			X:        x + fromFixed(g.XOffset),
			Y:        fromFixed(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return glyphs
}

// font returns the cached go-text font for src, parsing it on first use.
func (s *Shaper) font(src *FontSource) (*font.Font, error) {
	s.mu.RLock()
	f, ok := s.fonts[src]
	s.mu.RUnlock()
	if ok {
		return f, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fonts[src]; ok {
		return f, nil
	}
	face, err := font.ParseTTF(bytes.NewReader(src.data))
	if err != nil {
		return nil, err
	}
	s.fonts[src] = face.Font
	return face.Font, nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
