package llm

import (
	"context"
	"sync"
	"time"
)

// callBudget spaces model calls to at most rps per second. Up to burst calls
// pass back to back once the client has been idle long enough.
type callBudget struct {
	interval time.Duration
	burst    int

	mu sync.Mutex
	// due is when the budget would be fully spent at the current pace.
	due time.Time
}

// newCallBudget returns nil when rps <= 0; a nil budget never blocks.
func newCallBudget(rps float64, burst int) *callBudget {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	interval := time.Duration(float64(time.Second) / rps)
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &callBudget{interval: interval, burst: burst}
}

// Acquire blocks until a call fits the budget or ctx ends. A cancelled wait
// spends nothing.
func (b *callBudget) Acquire(ctx context.Context) error {
	if b == nil {
		return nil
	}
	for {
		wait := b.reserve(time.Now())
		if wait <= 0 {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// reserve books a call at now and returns zero, or returns how long to wait
// before trying again without booking anything.
func (b *callBudget) reserve(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.due.Before(now) {
		b.due = now
	}
	wait := b.due.Sub(now) - time.Duration(b.burst-1)*b.interval
	if wait > 0 {
		return wait
	}
	b.due = b.due.Add(b.interval)
	return 0
}
