package glyph

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultParser is the backend used when no WithParser option is given.
const DefaultParser = "opentype"

// FontParser turns raw TTF or OTF bytes into a ParsedFont.
type FontParser interface {
	Parse(data []byte) (ParsedFont, error)
}

// ParsedFont is the part of a font the prototype bank relies on: a family
// name and a character map.
type ParsedFont interface {
	// Family returns the family name stored in the font, or "".
	Family() string

	// GlyphIndex maps r to a glyph, or 0 (.notdef) when r is not covered.
	GlyphIndex(r rune) uint16
}

var (
	parsersMu sync.RWMutex
	parsers   = map[string]FontParser{
		DefaultParser: opentypeParser{},
	}
)

// RegisterParser makes a backend available to WithParser. Registering an
// existing name replaces it.
func RegisterParser(name string, p FontParser) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers[name] = p
}

// Parsers returns the registered backend names, sorted.
func Parsers() []string {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupParser(name string) (FontParser, error) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	p, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
	return p, nil
}

type opentypeParser struct{}

func (opentypeParser) Parse(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	return &opentypeFont{sfnt: f}, nil
}

// opentypeFont is the default ParsedFont. Outline renderers reach through
// it to the sfnt.Font.
type opentypeFont struct {
	sfnt *sfnt.Font
	buf  sync.Pool // *sfnt.Buffer
}

func (f *opentypeFont) Family() string {
	b := f.buffer()
	defer f.buf.Put(b)
	name, err := f.sfnt.Name(b, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

func (f *opentypeFont) GlyphIndex(r rune) uint16 {
	b := f.buffer()
	defer f.buf.Put(b)
	idx, err := f.sfnt.GlyphIndex(b, r)
	if err != nil {
		return 0
	}
	return uint16(idx)
}

func (f *opentypeFont) buffer() *sfnt.Buffer {
	if b, ok := f.buf.Get().(*sfnt.Buffer); ok {
		return b
	}
	return new(sfnt.Buffer)
}
