package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerStopsAtTerminalOutcome(t *testing.T) {
	// clock jumps past the playback deadline on the third tick
	times := []int64{1000, 1001, 90000}
	tickIdx := 0
	now := func() int64 {
		n := times[min(tickIdx, len(times)-1)]
		tickIdx++
		return n
	}

	p := duelPerspective()
	p.IsP1 = true
	p.MyStartTime = u64p(1000)

	var emitted []Outcome
	tk := NewTicker(
		func() (Perspective, bool) { return p, true },
		func(o Outcome) { emitted = append(emitted, o) },
		time.Millisecond, now,
	)

	done := make(chan struct{})
	go func() {
		tk.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not stop after terminal outcome")
	}

	require.NotEmpty(t, emitted)
	last := emitted[len(emitted)-1]
	assert.True(t, last.GameOver, "terminal outcome emitted before stopping")
	assert.Equal(t, ResultWin, last.Result)
	for _, o := range emitted[:len(emitted)-1] {
		assert.False(t, o.GameOver)
	}
}

func TestTickerStopsWhenViewGone(t *testing.T) {
	calls := 0
	view := func() (Perspective, bool) {
		calls++
		return duelPerspective(), calls < 3
	}

	emitted := 0
	tk := NewTicker(view, func(Outcome) { emitted++ }, time.Millisecond, func() int64 { return 1000 })

	done := make(chan struct{})
	go func() {
		tk.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not stop after view disappeared")
	}
	assert.Equal(t, 2, emitted)
}

func TestTickerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := duelPerspective()

	emitted := make(chan Outcome, 64)
	tk := NewTicker(
		func() (Perspective, bool) { return p, true },
		func(o Outcome) { emitted <- o },
		time.Millisecond, func() int64 { return 1000 },
	)

	done := make(chan struct{})
	go func() {
		tk.Run(ctx)
		close(done)
	}()

	// first recomputation happens before any interval elapses
	select {
	case <-emitted:
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate tick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not stop on cancel")
	}
}
