package core

import (
	"context"
	"time"
)

// TickerFunc returns a tick channel and its stop function.
// Tests pass a func backed by a channel they feed by hand.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func NewTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// RoundTimer is the per-room countdown task. It is not safe for concurrent
// use: the owning Room calls Start/Stop/Active under its own lock.
// Every Start gets a new generation; onTick receives it so the room can drop
// ticks from a timer that was already stopped.
type RoundTimer struct {
	interval time.Duration
	ticker   TickerFunc
	onTick   func(gen uint64)

	gen    uint64
	cancel context.CancelFunc
}

func NewRoundTimer(interval time.Duration, ticker TickerFunc, onTick func(gen uint64)) *RoundTimer {
	return &RoundTimer{interval: interval, ticker: ticker, onTick: onTick}
}

// Start cancels any outstanding countdown and begins a new one.
func (t *RoundTimer) Start(ctx context.Context) uint64 {
	t.Stop()
	t.gen++
	gen := t.gen
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	ticks, stop := t.ticker(t.interval)
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if ctx.Err() != nil {
					return
				}
				t.onTick(gen)
			}
		}
	}()
	return gen
}

// Stop is idempotent.
func (t *RoundTimer) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *RoundTimer) Running() bool { return t.cancel != nil }

// Active reports whether gen belongs to the running countdown.
func (t *RoundTimer) Active(gen uint64) bool {
	return t.cancel != nil && gen == t.gen
}
