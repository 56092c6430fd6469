package sketch

import (
	"github.com/gogpu/sketch/classify"
	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/preprocess"
	"github.com/gogpu/sketch/prototype"
)

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Default bank
//	p, err := sketch.New()
//
//	// Font-free bank for tests
//	p, err := sketch.New(sketch.WithRenderer(glyph.NewPatternRenderer()))
type Option func(*options)

type options struct {
	bank       *prototype.Bank
	renderer   glyph.Renderer
	plan       prototype.Plan
	normalize  []preprocess.Option
	classify   []classify.Option
	confidence float64
}

func defaultOptions() options {
	return options{
		plan:       prototype.DefaultPlan(),
		confidence: DefaultConfidence,
	}
}

// WithBank uses a prebuilt prototype bank. It takes precedence over
// WithRenderer and WithPlan.
func WithBank(b *prototype.Bank) Option {
	return func(o *options) {
		o.bank = b
	}
}

// WithRenderer builds a private bank with r instead of sharing the default
// bank.
func WithRenderer(r glyph.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithPlan sets the variants rendered for a private bank. It only applies
// together with WithRenderer.
func WithPlan(p prototype.Plan) Option {
	return func(o *options) {
		o.plan = p
	}
}

// WithNormalizer passes options to the normalizer used for live input and
// for a private bank.
func WithNormalizer(opts ...preprocess.Option) Option {
	return func(o *options) {
		o.normalize = append(o.normalize, opts...)
	}
}

// WithTemperature overrides the classifier's softmax temperature.
func WithTemperature(t classify.Temperature) Option {
	return func(o *options) {
		o.classify = append(o.classify, classify.WithTemperature(t))
	}
}

// WithConfidence sets the probability Result.Confident compares against.
func WithConfidence(p float64) Option {
	return func(o *options) {
		o.confidence = p
	}
}
