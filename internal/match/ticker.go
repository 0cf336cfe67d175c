package match

import (
	"context"
	"time"
)

// ViewFunc supplies the current perspective for a watched match, or
// ok=false when the match can no longer be derived (teardown, unknown id).
type ViewFunc func() (Perspective, bool)

// EmitFunc receives each recomputed outcome.
type EmitFunc func(Outcome)

// Ticker drives the once-per-second countdown recomputation for one
// observed match. It is an owned resource: Run holds the recurring work
// and releases it when the context is cancelled, the view goes away, or
// the match reaches a terminal outcome. Nothing here mutates cached
// state; every tick re-derives from the current view.
type Ticker struct {
	view     ViewFunc
	emit     EmitFunc
	interval time.Duration
	now      func() int64
}

// NewTicker builds a countdown ticker. A nil now defaults to wall time.
func NewTicker(view ViewFunc, emit EmitFunc, interval time.Duration, now func() int64) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	return &Ticker{view: view, emit: emit, interval: interval, now: now}
}

// Run recomputes immediately and then on every interval until the context
// is cancelled or the match completes. The terminal outcome is emitted
// before returning, so observers always see the final state.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if done := t.tick(); done {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := t.tick(); done {
				return
			}
		}
	}
}

func (t *Ticker) tick() bool {
	p, ok := t.view()
	if !ok {
		return true
	}
	o := ComputeOutcome(p, t.now())
	t.emit(o)
	return o.GameOver
}
