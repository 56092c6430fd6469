package prototype

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/internal/parallel"
	"github.com/gogpu/sketch/preprocess"
)

// Option configures Build.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	workers    int
	normalizer *preprocess.Normalizer
}

func defaultOptions() options {
	return options{
		logger:     slog.New(slog.DiscardHandler),
		normalizer: preprocess.NewNormalizer(),
	}
}

// WithLogger sets the logger for build progress. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers sets the number of render goroutines. Zero or negative means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithNormalizer sets the normalizer applied to rendered variants. It must
// match the one used for live input.
func WithNormalizer(n *preprocess.Normalizer) Option {
	return func(o *options) {
		if n != nil {
			o.normalizer = n
		}
	}
}

// Build renders every label under every variant of plan and normalizes the
// results into a Bank.
//
// Renders run in parallel; the bank lists prototypes per label in plan
// order regardless of scheduling. The first render error aborts the build.
// Variants that render without ink are skipped and counted.
func Build(ctx context.Context, r glyph.Renderer, plan Plan, opts ...Option) (*Bank, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	variants := plan.Variants()
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}

	type slot struct {
		proto Prototype
		empty bool
		err   error
	}
	n := len(Labels) * len(variants)
	slots := make([]slot, n)

	start := time.Now()
	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	err := pool.Run(ctx, n, func(i int) {
		label := Labels[i/len(variants)]
		v := variants[i%len(variants)]

		bmp, err := r.Render(label, v)
		if err != nil {
			slots[i].err = fmt.Errorf("prototype: %q %s: %w", label, v, err)
			cancel()
			return
		}
		norm := o.normalizer.Prepare(bmp)
		slots[i] = slot{
			proto: Prototype{Label: label, Grid: norm.Grid, Variant: v},
			empty: norm.Empty,
		}
	})

	// A render error cancels ctx; report it rather than the cancellation.
	for i := range slots {
		if slots[i].err != nil {
			return nil, slots[i].err
		}
	}
	if err != nil {
		return nil, err
	}

	protos := make([]Prototype, 0, n)
	skipped := 0
	for _, s := range slots {
		if s.empty {
			skipped++
			o.logger.Warn("prototype: variant has no ink",
				"label", string(s.proto.Label), "variant", s.proto.Variant.String())
			continue
		}
		protos = append(protos, s.proto)
	}

	bank := NewBank(protos)
	bank.skipped = skipped
	o.logger.Info("prototype: bank built",
		"prototypes", bank.Len(),
		"skipped", skipped,
		"workers", pool.Workers(),
		"duration", time.Since(start))
	return bank, nil
}
