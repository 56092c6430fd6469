package sketch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/sketch/classify"
	"github.com/gogpu/sketch/filter"
	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/grid"
	"github.com/gogpu/sketch/preprocess"
	"github.com/gogpu/sketch/prototype"
)

// DefaultConfidence is the top probability above which a Result counts as
// confident.
const DefaultConfidence = 0.5

// Result is the complete output of one pipeline run. A Result is never
// modified after it is returned or published.
type Result struct {
	// Seq numbers the runs of a Controller, starting at 1. Pipeline.Run
	// leaves it zero.
	Seq uint64

	// Empty reports that the snapshot had no ink. Canonical is then all
	// zero and Predictions still hold ten entries.
	Empty bool

	// Box is the ink bounding box in snapshot pixels, valid when !Empty.
	Box grid.Box

	// Canonical is the normalized 28x28 grid that was classified.
	Canonical *grid.Grid

	// Features are the edge grids shown alongside the prediction.
	Features filter.Features

	// Predictions has one entry per digit, most probable first.
	Predictions []classify.Prediction

	// Nearest is the prototype closest to Canonical.
	Nearest         prototype.Prototype
	NearestDistance float64

	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	confidence float64
}

// Top returns up to n predictions, most probable first.
func (r *Result) Top(n int) []classify.Prediction {
	if r == nil || n <= 0 {
		return nil
	}
	return r.Predictions[:min(n, len(r.Predictions))]
}

// Confident reports whether the best prediction clears the pipeline's
// confidence threshold. Empty input is never confident.
func (r *Result) Confident() bool {
	if r == nil || r.Empty || len(r.Predictions) == 0 {
		return false
	}
	return r.Predictions[0].Probability > r.confidence
}

// Pipeline runs snapshots through normalization, feature extraction and
// classification. A Pipeline is immutable and safe for concurrent use.
type Pipeline struct {
	normalizer *preprocess.Normalizer
	classifier *classify.Classifier
	bank       *prototype.Bank
	confidence float64
}

// defaultBank builds the shared font bank once per process.
var defaultBank = sync.OnceValues(func() (*prototype.Bank, error) {
	return prototype.Build(context.Background(),
		glyph.NewOutlineRenderer(nil),
		prototype.DefaultPlan(),
		prototype.WithLogger(Logger()))
})

// DefaultBank returns the process-wide prototype bank rendered from the
// embedded Go fonts. The first call builds it; later calls return the
// same bank or the same error.
func DefaultBank() (*prototype.Bank, error) {
	return defaultBank()
}

// New creates a Pipeline. Without options it classifies against
// DefaultBank.
func New(opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	norm := preprocess.NewNormalizer(o.normalize...)

	bank := o.bank
	switch {
	case bank != nil:
	case o.renderer != nil:
		b, err := prototype.Build(context.Background(), o.renderer, o.plan,
			prototype.WithNormalizer(norm),
			prototype.WithLogger(Logger()))
		if err != nil {
			return nil, fmt.Errorf("sketch: build prototypes: %w", err)
		}
		bank = b
	default:
		b, err := DefaultBank()
		if err != nil {
			return nil, fmt.Errorf("sketch: default prototypes: %w", err)
		}
		bank = b
	}

	cls, err := classify.New(bank, append(o.classify, classify.WithLogger(Logger()))...)
	if err != nil {
		return nil, fmt.Errorf("sketch: %w", err)
	}
	if w, h := cls.Size(); w != norm.CanonicalSize() || h != norm.CanonicalSize() {
		return nil, fmt.Errorf("sketch: %w", &classify.SizeMismatchError{
			Width: norm.CanonicalSize(), Height: norm.CanonicalSize(),
			WantWidth: w, WantHeight: h,
		})
	}

	return &Pipeline{
		normalizer: norm,
		classifier: cls,
		bank:       bank,
		confidence: o.confidence,
	}, nil
}

// CanonicalSize returns the side of the grids the pipeline classifies.
func (p *Pipeline) CanonicalSize() int {
	return p.normalizer.CanonicalSize()
}

// Bank returns the prototype bank the pipeline classifies against.
func (p *Pipeline) Bank() *prototype.Bank {
	return p.bank
}

// Run processes one snapshot. The snapshot is only read.
func (p *Pipeline) Run(snapshot *grid.Bitmap) (*Result, error) {
	if snapshot == nil {
		return nil, ErrNilSnapshot
	}
	start := time.Now()

	norm := p.normalizer.Prepare(snapshot)
	return p.finish(norm, start)
}

// RunGrid classifies a grid that is already canonical, skipping
// normalization.
func (p *Pipeline) RunGrid(g *grid.Grid) (*Result, error) {
	if g == nil {
		return nil, ErrNilSnapshot
	}
	start := time.Now()
	box, ok := preprocess.Locate(g, p.normalizer.InkThreshold())
	return p.finish(preprocess.Normalized{Grid: g.Clone(), Box: box, Empty: !ok}, start)
}

func (p *Pipeline) finish(norm preprocess.Normalized, start time.Time) (*Result, error) {
	cls, err := p.classifier.Classify(norm.Grid)
	if err != nil {
		return nil, fmt.Errorf("sketch: %w", err)
	}

	res := &Result{
		Empty:           norm.Empty,
		Box:             norm.Box,
		Canonical:       norm.Grid,
		Features:        filter.Extract(norm.Grid),
		Predictions:     cls.Predictions,
		Nearest:         cls.Nearest,
		NearestDistance: cls.NearestDistance,
		Elapsed:         time.Since(start),
		confidence:      p.confidence,
	}
	Logger().Debug("sketch: run",
		"empty", res.Empty,
		"box", res.Box.String(),
		"top", string(res.Predictions[0].Label),
		"p", res.Predictions[0].Probability,
		"alpha", cls.Alpha,
		"spread", cls.Spread,
		"elapsed", res.Elapsed)
	return res, nil
}
