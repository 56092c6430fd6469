package sketch

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/sketch/grid"
)

// State is the phase of a Controller.
type State int

const (
	// Idle means no run has been requested yet.
	Idle State = iota
	// Computing means a run is pending or in progress.
	Computing
	// Settled means the latest requested snapshot has been processed.
	Settled
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Computing:
		return "computing"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithOnResult registers a callback invoked with every published Result,
// on the goroutine that ran the pipeline.
func WithOnResult(fn func(*Result)) ControllerOption {
	return func(c *Controller) {
		c.onResult = fn
	}
}

// WithOnError registers a callback for failed runs.
func WithOnError(fn func(error)) ControllerOption {
	return func(c *Controller) {
		c.onError = fn
	}
}

// Controller turns a stream of snapshots into a stream of Results.
//
// Trigger stores the newest snapshot and schedules a run; snapshots that
// are replaced before their run starts are never processed. Runs do not
// overlap, even when the scheduler calls back concurrently. Each finished
// run replaces the published Result in one atomic store.
//
// Controller is safe for concurrent use.
type Controller struct {
	pipeline *Pipeline
	sched    Scheduler
	onResult func(*Result)
	onError  func(error)

	mu      sync.Mutex
	state   State
	pending *grid.Bitmap
	seq     uint64

	runMu  sync.Mutex
	result atomic.Pointer[Result]
}

// NewController creates a Controller that runs p on sched.
func NewController(p *Pipeline, sched Scheduler, opts ...ControllerOption) *Controller {
	c := &Controller{pipeline: p, sched: sched}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger requests a run on snapshot. The controller keeps the bitmap
// until the run starts; callers must not modify it afterwards, so pass a
// Clone of a live canvas. A nil snapshot is ignored.
func (c *Controller) Trigger(snapshot *grid.Bitmap) {
	if snapshot == nil {
		return
	}
	c.mu.Lock()
	c.pending = snapshot
	c.state = Computing
	c.mu.Unlock()
	c.sched.Schedule(c.run)
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the latest published Result, or nil before the first run
// completes.
func (c *Controller) Result() *Result {
	return c.result.Load()
}

func (c *Controller) run() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.mu.Lock()
	snap := c.pending
	c.pending = nil
	c.mu.Unlock()
	if snap == nil {
		// Already consumed by an earlier dispatch.
		return
	}

	var (
		res *Result
		err error
	)
	if c.pipeline == nil {
		err = ErrNilPipeline
	} else {
		res, err = c.pipeline.Run(snap)
	}

	c.mu.Lock()
	if err == nil {
		c.seq++
		res.Seq = c.seq
		c.result.Store(res)
	}
	if c.pending == nil {
		c.state = Settled
	}
	c.mu.Unlock()

	if err != nil {
		Logger().Warn("sketch: run failed", "err", err)
		if c.onError != nil {
			c.onError(err)
		}
		return
	}
	if c.onResult != nil {
		c.onResult(res)
	}
}
