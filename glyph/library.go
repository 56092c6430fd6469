package glyph

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFamilies are the five families the default prototype plan renders.
var DefaultFamilies = []string{"goregular", "gobold", "goitalic", "gomono", "gomonobold"}

// builtinFonts maps family names to the embedded Go fonts.
var builtinFonts = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
}

// Library resolves family names to parsed FontSources. Each family is
// parsed at most once. Library is safe for concurrent use.
type Library struct {
	mu      sync.Mutex
	data    map[string][]byte
	sources map[string]*FontSource
	opts    []SourceOption
}

// NewLibrary creates a Library preloaded with the embedded Go fonts.
func NewLibrary(opts ...SourceOption) *Library {
	l := &Library{
		data:    make(map[string][]byte, len(builtinFonts)),
		sources: make(map[string]*FontSource),
		opts:    opts,
	}
	for name, ttf := range builtinFonts {
		l.data[name] = ttf
	}
	return l
}

// Add registers font data under a family name, replacing any previous
// registration. The data is parsed lazily on first use.
func (l *Library) Add(family string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[family] = data
	delete(l.sources, family)
}

// Families returns the registered family names in sorted order.
func (l *Library) Families() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.data))
	for name := range l.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the parsed FontSource for a family.
func (l *Library) Source(family string) (*FontSource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.sources[family]; ok {
		return s, nil
	}
	data, ok := l.data[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	s, err := NewFontSource(data, l.opts...)
	if err != nil {
		return nil, fmt.Errorf("glyph: family %q: %w", family, err)
	}
	l.sources[family] = s
	return s, nil
}
