package tfl

import (
	"context"
	"sync"
	"time"
)

// TfL publishes a ceiling of 300 requests per minute per key. 210ms spacing
// keeps us at ~285/min with a safety margin.
const DefaultRequestInterval = 210 * time.Millisecond

// RateLimiter paces outbound TfL API calls to a fixed minimum interval.
// Callers block in Acquire until the next slot is available. The next slot is
// advanced from its planned value rather than the wake time, so the cadence
// does not drift under sustained load.
type RateLimiter struct {
	mutex         sync.Mutex
	interval      time.Duration
	nextAvailable time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

type RateLimiterOption func(*RateLimiter)

// WithClock substitutes the wall clock and sleep, letting tests drive the
// limiter deterministically.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) RateLimiterOption {
	return func(r *RateLimiter) {
		r.now = now
		r.sleep = sleep
	}
}

func NewRateLimiter(interval time.Duration, opts ...RateLimiterOption) *RateLimiter {
	if interval <= 0 {
		interval = DefaultRequestInterval
	}

	limiter := &RateLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}

	for _, opt := range opts {
		opt(limiter)
	}

	return limiter
}

// Acquire blocks until it is safe to issue the next upstream call. A
// cancelled context aborts the wait and returns the context error without
// corrupting the shared clock state.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()

	if now.Before(r.nextAvailable) {
		err := r.sleep(ctx, r.nextAvailable.Sub(now))
		r.nextAvailable = r.nextAvailable.Add(r.interval)

		return err
	}

	// First request or after a long break
	r.nextAvailable = now.Add(r.interval)

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
