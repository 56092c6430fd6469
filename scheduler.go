package sketch

import (
	"context"
	"sync"
	"time"
)

// DefaultFrame is the TickScheduler interval when none is given, about one
// display frame at 60 Hz.
const DefaultFrame = 16 * time.Millisecond

// Scheduler defers work to a later point on some event loop. It holds a
// single slot: scheduling again before the slot runs replaces the pending
// function, so only the latest one runs.
type Scheduler interface {
	Schedule(fn func())
}

// slot is the single pending function shared by the schedulers.
type slot struct {
	mu sync.Mutex
	fn func()
}

func (s *slot) put(fn func()) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *slot) take() func() {
	s.mu.Lock()
	fn := s.fn
	s.fn = nil
	s.mu.Unlock()
	return fn
}

// ManualScheduler runs the pending function only when Dispatch is called.
// Hosts with their own event loop call Dispatch once per iteration.
type ManualScheduler struct {
	slot slot
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule(fn func()) {
	m.slot.put(fn)
}

// Pending reports whether a function is waiting.
func (m *ManualScheduler) Pending() bool {
	m.slot.mu.Lock()
	defer m.slot.mu.Unlock()
	return m.slot.fn != nil
}

// Dispatch runs the pending function on the calling goroutine and reports
// whether there was one.
func (m *ManualScheduler) Dispatch() bool {
	fn := m.slot.take()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// TickScheduler runs the pending function from its own goroutine on every
// tick of a fixed interval.
type TickScheduler struct {
	interval time.Duration
	slot     slot
}

// NewTickScheduler creates a TickScheduler. A non-positive interval means
// DefaultFrame. Call Run to start dispatching.
func NewTickScheduler(interval time.Duration) *TickScheduler {
	if interval <= 0 {
		interval = DefaultFrame
	}
	return &TickScheduler{interval: interval}
}

// Schedule implements Scheduler.
func (t *TickScheduler) Schedule(fn func()) {
	t.slot.put(fn)
}

// Interval returns the tick interval.
func (t *TickScheduler) Interval() time.Duration {
	return t.interval
}

// Run dispatches until ctx is done and returns ctx.Err(). A function
// pending at cancellation is dropped.
func (t *TickScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if fn := t.slot.take(); fn != nil {
				fn()
			}
		}
	}
}
