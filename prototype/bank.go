// Package prototype renders and stores the reference images every sketch
// is compared against.
//
// A Bank holds, for each digit label, the canonical grids produced by
// rendering the label through a glyph.Renderer under every variant of a
// Plan and normalizing the result exactly like live input. Banks are
// built once and are read-only afterwards, so any number of goroutines
// may query one.
package prototype

import (
	"errors"

	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/grid"
)

// ErrNoVariants is returned by Build when the plan produces no variants.
var ErrNoVariants = errors.New("prototype: plan has no variants")

// Prototype is one normalized rendering of a label.
type Prototype struct {
	Label   rune
	Grid    *grid.Grid
	Variant glyph.Variant
}

// Bank maps labels to their prototypes.
type Bank struct {
	byLabel map[rune][]Prototype
	width   int
	height  int
	skipped int
}

// NewBank assembles a bank from prototypes, keeping their order per label.
// It is the building block for Build and for hand-made banks in tests.
func NewBank(protos []Prototype) *Bank {
	b := &Bank{byLabel: make(map[rune][]Prototype)}
	for _, p := range protos {
		if b.width == 0 && p.Grid != nil {
			b.width, b.height = p.Grid.Width(), p.Grid.Height()
		}
		b.byLabel[p.Label] = append(b.byLabel[p.Label], p)
	}
	return b
}

// Len returns the total number of prototypes.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, ps := range b.byLabel {
		n += len(ps)
	}
	return n
}

// Prototypes returns the prototypes of a label. The slice must not be
// modified.
func (b *Bank) Prototypes(label rune) []Prototype {
	if b == nil {
		return nil
	}
	return b.byLabel[label]
}

// Labels returns the digit labels present in the bank, in ascending order.
func (b *Bank) Labels() []rune {
	if b == nil {
		return nil
	}
	out := make([]rune, 0, len(b.byLabel))
	for _, l := range Labels {
		if len(b.byLabel[l]) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// Size returns the dimensions shared by the bank's grids.
func (b *Bank) Size() (width, height int) {
	if b == nil {
		return 0, 0
	}
	return b.width, b.height
}

// Skipped returns how many rendered variants had no ink and were left out.
func (b *Bank) Skipped() int {
	if b == nil {
		return 0
	}
	return b.skipped
}
