package glyph

import (
	"golang.org/x/image/font/sfnt"
)

// FontSource is one parsed font file. It serves every size and offset of
// its family and is safe for concurrent use.
type FontSource struct {
	data   []byte
	parsed ParsedFont
	family string
}

// SourceOption configures NewFontSource.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	parser string
}

// WithParser selects a backend registered with RegisterParser.
func WithParser(name string) SourceOption {
	return func(c *sourceConfig) {
		c.parser = name
	}
}

// NewFontSource parses TTF or OTF data. The data is copied.
func NewFontSource(data []byte, opts ...SourceOption) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	cfg := sourceConfig{parser: DefaultParser}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := lookupParser(cfg.parser)
	if err != nil {
		return nil, err
	}
	parsed, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	return &FontSource{
		data:   append([]byte(nil), data...),
		parsed: parsed,
		family: parsed.Family(),
	}, nil
}

// Family returns the family name recorded in the font file.
func (s *FontSource) Family() string {
	return s.family
}

// HasGlyph reports whether the font maps r to a real glyph.
func (s *FontSource) HasGlyph(r rune) bool {
	return s.parsed.GlyphIndex(r) != 0
}

// Missing returns the labels the font cannot render, in input order.
func (s *FontSource) Missing(labels []rune) []rune {
	var out []rune
	for _, r := range labels {
		if !s.HasGlyph(r) {
			out = append(out, r)
		}
	}
	return out
}

// outlineFont returns the sfnt.Font behind the default backend.
func (s *FontSource) outlineFont() (*sfnt.Font, error) {
	f, ok := s.parsed.(*opentypeFont)
	if !ok {
		return nil, ErrUnsupportedFont
	}
	return f.sfnt, nil
}
