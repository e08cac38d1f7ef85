// Package throttle bounds how many extraction processes run at once across
// every channel of a run.
package throttle

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Throttle is a counting semaphore shared by pointer with every pipeline.
type Throttle struct {
	sem   *semaphore.Weighted
	limit int

	mu       sync.Mutex
	inFlight int
	peak     int
	total    int
}

// New builds a throttle admitting at most n concurrent calls. Values below 1
// are raised to 1.
func New(n int) *Throttle {
	if n < 1 {
		n = 1
	}
	return &Throttle{sem: semaphore.NewWeighted(int64(n)), limit: n}
}

// Limit returns the configured slot count.
func (t *Throttle) Limit() int {
	return t.limit
}

// Do blocks until a slot is free, runs fn and releases the slot on every exit
// path, including a panic in fn. It returns ctx.Err() without running fn when
// the context ends while waiting.
func (t *Throttle) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	t.enter()
	defer func() {
		t.leave()
		t.sem.Release(1)
	}()
	return fn(ctx)
}

func (t *Throttle) enter() {
	t.mu.Lock()
	t.inFlight++
	t.total++
	if t.inFlight > t.peak {
		t.peak = t.inFlight
	}
	t.mu.Unlock()
}

func (t *Throttle) leave() {
	t.mu.Lock()
	t.inFlight--
	t.mu.Unlock()
}

// Stats is a snapshot of throttle usage.
type Stats struct {
	Limit    int
	InFlight int
	Peak     int
	Total    int
}

// Stats returns the current usage counters.
func (t *Throttle) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{Limit: t.limit, InFlight: t.inFlight, Peak: t.peak, Total: t.total}
}
