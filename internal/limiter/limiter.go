package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of generations in flight at once. Waiters are
// served in arrival order; Acquire unblocks when a slot frees or the caller's
// context is cancelled.
type Limiter struct {
	sem *semaphore.Weighted
}

// New creates a Limiter with n concurrent slots.
func New(n int64) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(n)}
}

// Acquire blocks until a slot is available or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
