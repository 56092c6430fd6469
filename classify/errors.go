package classify

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBank is returned for a nil or empty prototype bank.
	ErrEmptyBank = errors.New("classify: empty prototype bank")

	// ErrMissingClass is returned when a digit label has no prototype.
	ErrMissingClass = errors.New("classify: class has no prototypes")
)

// SizeMismatchError reports an input grid whose dimensions differ from
// the bank's.
type SizeMismatchError struct {
	Width, Height         int
	WantWidth, WantHeight int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("classify: grid is %dx%d, prototypes are %dx%d",
		e.Width, e.Height, e.WantWidth, e.WantHeight)
}
