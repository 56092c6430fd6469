package sketch

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/grid"
)

// goScheduler runs every scheduled function on a new goroutine, so runs
// may be dispatched concurrently.
type goScheduler struct {
	wg sync.WaitGroup
}

func (g *goScheduler) Schedule(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

func digitCanvas(t testing.TB, label rune) *grid.Bitmap {
	t.Helper()
	b, err := glyph.NewPatternRenderer().Render(label, testPlan.Variants()[0])
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{Computing, "computing"},
		{Settled, "settled"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestControllerStates(t *testing.T) {
	sched := NewManualScheduler()
	c := NewController(testPipeline(t), sched)

	if c.State() != Idle {
		t.Errorf("initial State() = %v, want idle", c.State())
	}
	if c.Result() != nil {
		t.Error("Result() should be nil before the first run")
	}

	c.Trigger(digitCanvas(t, '1'))
	if c.State() != Computing {
		t.Errorf("State() after Trigger = %v, want computing", c.State())
	}
	if !sched.Pending() {
		t.Error("Trigger should schedule a run")
	}

	if !sched.Dispatch() {
		t.Fatal("Dispatch() = false, want true")
	}
	if c.State() != Settled {
		t.Errorf("State() after run = %v, want settled", c.State())
	}
	res := c.Result()
	if res == nil || res.Seq != 1 {
		t.Fatalf("Result() = %+v, want Seq 1", res)
	}
	if res.Predictions[0].Label != '1' {
		t.Errorf("top label = %q, want '1'", res.Predictions[0].Label)
	}
}

func TestControllerCoalesces(t *testing.T) {
	sched := NewManualScheduler()
	var runs atomic.Int32
	c := NewController(testPipeline(t), sched, WithOnResult(func(*Result) {
		runs.Add(1)
	}))

	c.Trigger(digitCanvas(t, '2'))
	c.Trigger(digitCanvas(t, '5'))
	c.Trigger(digitCanvas(t, '7'))

	if !sched.Dispatch() {
		t.Fatal("Dispatch() = false, want true")
	}
	if sched.Dispatch() {
		t.Error("second Dispatch() = true, want the slot empty")
	}
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
	res := c.Result()
	if res.Seq != 1 {
		t.Errorf("Seq = %d, want 1", res.Seq)
	}
	if res.Predictions[0].Label != '7' {
		t.Errorf("top label = %q, want the latest snapshot '7'", res.Predictions[0].Label)
	}
}

func TestControllerTriggerDuringRun(t *testing.T) {
	sched := NewManualScheduler()
	var c *Controller
	retriggered := false
	c = NewController(testPipeline(t), sched, WithOnResult(func(*Result) {
		if !retriggered {
			retriggered = true
			c.Trigger(digitCanvas(t, '4'))
		}
	}))

	c.Trigger(digitCanvas(t, '0'))
	sched.Dispatch()
	if c.State() != Computing {
		t.Errorf("State() with a pending trigger = %v, want computing", c.State())
	}
	sched.Dispatch()
	if c.State() != Settled {
		t.Errorf("State() = %v, want settled", c.State())
	}
	if res := c.Result(); res.Seq != 2 || res.Predictions[0].Label != '4' {
		t.Errorf("Result() = seq %d top %q, want seq 2 top '4'", res.Seq, res.Predictions[0].Label)
	}
}

func TestControllerRunsDoNotOverlap(t *testing.T) {
	sched := &goScheduler{}
	var active, peak atomic.Int32
	c := NewController(testPipeline(t), sched, WithOnResult(func(*Result) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
	}))

	labels := []rune("0123456789")
	for i := range 40 {
		c.Trigger(digitCanvas(t, labels[i%10]))
	}
	sched.wg.Wait()

	if peak.Load() > 1 {
		t.Errorf("peak concurrent runs = %d, want 1", peak.Load())
	}
	if c.State() != Settled {
		t.Errorf("State() = %v, want settled", c.State())
	}
}

func TestControllerAtomicPublication(t *testing.T) {
	sched := &goScheduler{}
	c := NewController(testPipeline(t), sched)

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for range 4 {
		readers.Add(1)
		go func() {
			defer readers.Done()
			var last uint64
			for {
				select {
				case <-stop:
					return
				default:
				}
				res := c.Result()
				if res == nil {
					continue
				}
				if res.Seq < last {
					t.Errorf("Seq went backwards: %d after %d", res.Seq, last)
					return
				}
				last = res.Seq
				if len(res.Predictions) != 10 || res.Canonical == nil || res.Features.PooledY == nil {
					t.Errorf("incomplete Result published: %+v", res)
					return
				}
			}
		}()
	}

	canvas := grid.NewCanvas(64, 64)
	for i := range 30 {
		canvas.Stroke(10, 10, float64(20+i), 50, 3, color.NRGBA{A: 255})
		c.Trigger(canvas.Clone())
	}
	sched.wg.Wait()
	close(stop)
	readers.Wait()

	if c.Result() == nil {
		t.Fatal("no Result published")
	}
}

func TestControllerError(t *testing.T) {
	sched := NewManualScheduler()
	var got error
	c := NewController(nil, sched, WithOnError(func(err error) { got = err }))

	c.Trigger(grid.NewCanvas(4, 4))
	sched.Dispatch()
	if !errors.Is(got, ErrNilPipeline) {
		t.Errorf("onError got %v, want ErrNilPipeline", got)
	}
	if c.Result() != nil {
		t.Error("failed run should not publish a Result")
	}
	if c.State() != Settled {
		t.Errorf("State() = %v, want settled", c.State())
	}
}

func TestControllerIgnoresNilSnapshot(t *testing.T) {
	sched := NewManualScheduler()
	c := NewController(testPipeline(t), sched)

	c.Trigger(nil)
	if c.State() != Idle || sched.Pending() {
		t.Errorf("Trigger(nil) on idle controller: state %v, pending %v", c.State(), sched.Pending())
	}

	c.Trigger(digitCanvas(t, '2'))
	c.Trigger(nil)
	sched.Dispatch()
	if c.State() != Settled {
		t.Errorf("State() = %v, want settled", c.State())
	}
	res := c.Result()
	if res == nil || res.Predictions[0].Label != '2' {
		t.Errorf("Result() = %+v, want the snapshot before Trigger(nil)", res)
	}
}

func TestTickScheduler(t *testing.T) {
	sched := NewTickScheduler(time.Millisecond)
	if sched.Interval() != time.Millisecond {
		t.Errorf("Interval() = %v, want 1ms", sched.Interval())
	}
	if NewTickScheduler(0).Interval() != DefaultFrame {
		t.Errorf("default Interval() = %v, want %v", NewTickScheduler(0).Interval(), DefaultFrame)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	results := make(chan *Result, 4)
	c := NewController(testPipeline(t), sched, WithOnResult(func(r *Result) { results <- r }))
	c.Trigger(digitCanvas(t, '6'))

	select {
	case r := <-results:
		if r.Predictions[0].Label != '6' {
			t.Errorf("top label = %q, want '6'", r.Predictions[0].Label)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no result from TickScheduler")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestManualSchedulerLastWriteWins(t *testing.T) {
	sched := NewManualScheduler()
	var got []int
	for i := range 3 {
		sched.Schedule(func() { got = append(got, i) })
	}
	sched.Dispatch()
	sched.Dispatch()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("ran %v, want [2]", got)
	}
}
