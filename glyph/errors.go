package glyph

import (
	"errors"
	"fmt"
)

// Sentinel errors for the glyph package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("glyph: empty font data")

	// ErrUnknownFamily is returned when a Library has no such family.
	ErrUnknownFamily = errors.New("glyph: unknown font family")

	// ErrMissingGlyph is returned when a font has no glyph for a label.
	ErrMissingGlyph = errors.New("glyph: missing glyph")

	// ErrInvalidSize is returned for non-positive glyph sizes.
	ErrInvalidSize = errors.New("glyph: size must be positive")

	// ErrUnknownParser is returned by WithParser for an unregistered backend.
	ErrUnknownParser = errors.New("glyph: unknown font parser")

	// ErrUnsupportedFont is returned when a renderer needs outlines that the
	// source's parser backend does not expose.
	ErrUnsupportedFont = errors.New("glyph: font backend does not expose outlines")
)

// RenderError describes a failed Render call.
type RenderError struct {
	Label   rune
	Variant Variant
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("glyph: render %q with %s: %v", e.Label, e.Variant, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}
