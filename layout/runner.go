package layout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/johnymontana/dgraph-client-app-sub001/errors"
	"github.com/johnymontana/dgraph-client-app-sub001/graph"
)

// DefaultTickInterval is the scheduling interval for continuous stepping.
const DefaultTickInterval = 50 * time.Millisecond

// Runner drives a continuously stepping layout over one graph model: one
// relaxation step per tick while the running flag is set. Pausing clears
// the flag without discarding accumulated positions; stopping cancels the
// background goroutine so it never outlives the model it mutates.
//
// Exactly one Runner writes one model at a time. Readers take Snapshot,
// which copies positions under the same lock the stepper holds, so a
// snapshot is internally consistent but immediately stale.
type Runner struct {
	engine   *Engine
	model    *graph.Model
	interval time.Duration

	running atomic.Bool // stepping flag; clear = paused
	ticks   atomic.Int64

	mu sync.Mutex // guards model positions during Step/Snapshot

	lifecycleMu sync.Mutex
	started     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewRunner creates a continuous layout runner for a model. A non-positive
// interval falls back to DefaultTickInterval.
func NewRunner(engine *Engine, model *graph.Model, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Runner{
		engine:   engine,
		model:    model,
		interval: interval,
	}
}

// Start launches the background stepping goroutine in the running state.
func (r *Runner) Start(ctx context.Context) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if r.started {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "LayoutRunner", "Start", "check running state")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.started = true
	r.running.Store(true)

	go r.loop(runCtx)
	return nil
}

// loop steps the model once per tick while the running flag is set.
func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.running.Load() {
				continue
			}
			r.mu.Lock()
			r.engine.Step(r.model)
			r.mu.Unlock()
			r.ticks.Add(1)
		}
	}
}

// Pause clears the running flag. Positions accumulated so far are kept.
func (r *Runner) Pause() {
	r.running.Store(false)
}

// Resume sets the running flag; stepping continues from the kept positions.
func (r *Runner) Resume() {
	r.running.Store(true)
}

// IsRunning reports whether the runner is currently stepping.
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// Ticks returns the number of relaxation steps performed so far.
func (r *Runner) Ticks() int64 {
	return r.ticks.Load()
}

// Stop cancels the background goroutine and waits for it to exit. Stopping
// a runner that never started or already stopped is a no-op.
func (r *Runner) Stop(timeout time.Duration) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if !r.started {
		return nil
	}
	r.started = false
	r.running.Store(false)
	r.cancel()

	select {
	case <-r.done:
		return nil
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrShuttingDown, "LayoutRunner", "Stop", "wait for stepper exit")
	}
}

// Snapshot copies the current node positions. The copy is taken under the
// stepping lock, so it is consistent for one instant; callers must tolerate
// positions having moved by the time they read it.
func (r *Runner) Snapshot() map[string]graph.Position {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]graph.Position, len(r.model.Nodes))
	for id, node := range r.model.Nodes {
		if node.Position != nil {
			out[id] = *node.Position
		}
	}
	return out
}

// Model returns the model this runner mutates.
func (r *Runner) Model() *graph.Model {
	return r.model
}
