package grid

import (
	"fmt"
	"image"
)

// Box is an integer pixel rectangle in bitmap coordinates.
// A located box always has W > 0 and H > 0.
type Box struct {
	X, Y int
	W, H int
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Longest returns the longer side.
func (b Box) Longest() int {
	return max(b.W, b.H)
}

// String implements fmt.Stringer.
func (b Box) String() string {
	return fmt.Sprintf("{x:%d y:%d w:%d h:%d}", b.X, b.Y, b.W, b.H)
}
