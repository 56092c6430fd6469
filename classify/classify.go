// Package classify scores a canonical grid against a prototype bank.
//
// For each digit the classifier takes the smallest mean squared error
// between the input and that digit's prototypes, then turns the ten
// distances into probabilities with a softmax whose temperature adapts to
// how far apart the distances are: a clear winner gets a sharp
// distribution, a muddle gets a flat one.
package classify

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/gogpu/sketch/grid"
	"github.com/gogpu/sketch/prototype"
)

const (
	minSpread = 1e-6
	epsilon   = 1e-6
)

// Temperature controls the softmax sharpness:
// alpha = clamp(Scale / sqrt(spread + 1e-6), Min, Max).
type Temperature struct {
	Scale float64
	Min   float64
	Max   float64
}

// DefaultTemperature is the temperature used unless WithTemperature is given.
var DefaultTemperature = Temperature{Scale: 60, Min: 30, Max: 120}

// Alpha returns the inverse temperature for a distance spread.
func (t Temperature) Alpha(spread float64) float64 {
	a := t.Scale / math.Sqrt(spread+epsilon)
	return math.Min(math.Max(a, t.Min), t.Max)
}

// Prediction is the score of one label.
type Prediction struct {
	Label       rune
	Probability float64
	// Distance is the smallest MSE to any prototype of Label.
	Distance float64
}

// Result is the outcome of one classification.
type Result struct {
	// Predictions has one entry per digit, most probable first.
	Predictions []Prediction

	// Nearest is the closest prototype over all classes.
	Nearest         prototype.Prototype
	NearestDistance float64

	// Alpha and Spread are the softmax diagnostics of this run.
	Alpha  float64
	Spread float64
}

// Option configures a Classifier.
type Option func(*options)

type options struct {
	temp   Temperature
	logger *slog.Logger
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t Temperature) Option {
	return func(o *options) {
		o.temp = t
	}
}

// WithLogger sets the logger for per-run diagnostics. A nil logger is
// ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Classifier is safe for concurrent use.
type Classifier struct {
	bank   *prototype.Bank
	width  int
	height int
	opts   options
}

// New validates bank and returns a Classifier over it.
func New(bank *prototype.Bank, opts ...Option) (*Classifier, error) {
	o := options{
		temp:   DefaultTemperature,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if bank.Len() == 0 {
		return nil, ErrEmptyBank
	}
	for _, l := range prototype.Labels {
		if len(bank.Prototypes(l)) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingClass, l)
		}
	}
	w, h := bank.Size()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: prototypes have no cells", ErrEmptyBank)
	}
	for _, l := range prototype.Labels {
		for _, p := range bank.Prototypes(l) {
			if p.Grid.Width() != w || p.Grid.Height() != h {
				return nil, fmt.Errorf("classify: prototype %q %s: %w", l, p.Variant,
					&SizeMismatchError{p.Grid.Width(), p.Grid.Height(), w, h})
			}
		}
	}
	return &Classifier{bank: bank, width: w, height: h, opts: o}, nil
}

// Size returns the grid dimensions the classifier accepts.
func (c *Classifier) Size() (width, height int) {
	return c.width, c.height
}

// Classify scores g. The returned Predictions always hold ten entries whose
// probabilities sum to 1.
func (c *Classifier) Classify(g *grid.Grid) (*Result, error) {
	if g == nil {
		return nil, &SizeMismatchError{0, 0, c.width, c.height}
	}
	if g.Width() != c.width || g.Height() != c.height {
		return nil, &SizeMismatchError{g.Width(), g.Height(), c.width, c.height}
	}
	x := g.Raw()
	n := float64(len(x))

	dist := make([]float64, len(prototype.Labels))
	res := &Result{NearestDistance: math.Inf(1)}
	for i, l := range prototype.Labels {
		best := math.Inf(1)
		for _, p := range c.bank.Prototypes(l) {
			d := floats.Distance(x, p.Grid.Raw(), 2)
			mse := d * d / n
			if mse < best {
				best = mse
			}
			if mse < res.NearestDistance {
				res.NearestDistance = mse
				res.Nearest = p
			}
		}
		dist[i] = best
	}

	spread := math.Max(floats.Max(dist)-floats.Min(dist), minSpread)
	alpha := c.opts.temp.Alpha(spread)

	logits := make([]float64, len(dist))
	for i, d := range dist {
		logits[i] = -alpha * d
	}
	lse := floats.LogSumExp(logits)

	res.Predictions = make([]Prediction, len(dist))
	for i, l := range prototype.Labels {
		res.Predictions[i] = Prediction{
			Label:       l,
			Probability: math.Exp(logits[i] - lse),
			Distance:    dist[i],
		}
	}
	sort.SliceStable(res.Predictions, func(i, j int) bool {
		return res.Predictions[i].Probability > res.Predictions[j].Probability
	})
	res.Alpha = alpha
	res.Spread = spread

	c.opts.logger.Debug("classify: scored",
		"top", string(res.Predictions[0].Label),
		"p", res.Predictions[0].Probability,
		"alpha", alpha,
		"spread", spread)
	return res, nil
}
