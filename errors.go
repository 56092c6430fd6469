package sketch

import "errors"

var (
	// ErrNilSnapshot is returned by Pipeline.Run for a nil bitmap.
	ErrNilSnapshot = errors.New("sketch: nil snapshot")

	// ErrNilPipeline is returned when a Controller has no pipeline to run.
	ErrNilPipeline = errors.New("sketch: nil pipeline")
)
