package geocoding

import (
	"context"
	"sync"
	"time"
)

// rateLimiter spaces outbound provider calls by a minimum interval across
// all concurrent callers. It hands each caller a reservation slot under the
// mutex and sleeps outside it, so waiting callers hold no other resource.
// One instance serves the whole process: the provider quota is shared.
type rateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

// acquire blocks until the caller's slot arrives or the context is done.
func (l *rateLimiter) acquire(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
