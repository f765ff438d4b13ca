package engine

import (
	"context"
	"sync"

	"main/internal/model"
)

// Runner owns the single running algorithm. Starting a new one cancels
// the current one first, so at most one engine evaluates ticks at any
// time system-wide.
type Runner struct {
	cfg  Config
	exec ActionExecutor

	mu      sync.Mutex
	current *Engine
}

// NewRunner builds a runner that constructs engines on demand.
func NewRunner(cfg Config, exec ActionExecutor) *Runner {
	return &Runner{cfg: cfg, exec: exec}
}

// Start cancels any running algorithm and starts a fresh one.
func (r *Runner) Start(ctx context.Context, rules []model.Rule, position model.PositionContext) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Cancel()
	}

	eng := New(r.cfg, r.exec)
	if err := eng.Start(ctx, rules, position); err != nil {
		return nil, err
	}
	r.current = eng
	return eng, nil
}

// Cancel stops the running algorithm, if any.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Cancel()
	}
}

// Current returns the most recently started engine, which may already
// be terminal. Nil before the first Start.
func (r *Runner) Current() *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// HandleTick forwards a tick to the running algorithm.
func (r *Runner) HandleTick(tick model.Tick) {
	eng := r.Current()
	if eng != nil {
		eng.HandleTick(tick)
	}
}
