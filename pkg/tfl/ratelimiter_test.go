package tfl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationly/stationly/pkg/tfl"
)

// fakeClock drives the limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.now = c.now.Add(d)
	return nil
}

func newTestLimiter(interval time.Duration) (*tfl.RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	return tfl.NewRateLimiter(interval, tfl.WithClock(clock.Now, clock.Sleep)), clock
}

func TestRateLimiterSpacing(t *testing.T) {
	limiter, clock := newTestLimiter(210 * time.Millisecond)

	var releases []time.Time
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Acquire(context.Background()))
		releases = append(releases, clock.Now())
	}

	for i := 1; i < len(releases); i++ {
		gap := releases[i].Sub(releases[i-1])
		assert.GreaterOrEqual(t, gap, 210*time.Millisecond, "release %d too close to release %d", i, i-1)
	}
}

func TestRateLimiterResetsAfterIdle(t *testing.T) {
	limiter, clock := newTestLimiter(210 * time.Millisecond)

	require.NoError(t, limiter.Acquire(context.Background()))

	// A long idle period must not bank extra permits
	clock.Sleep(context.Background(), 5*time.Second)
	start := clock.Now()

	require.NoError(t, limiter.Acquire(context.Background()))
	assert.Equal(t, start, clock.Now(), "acquire after idle should not sleep")

	require.NoError(t, limiter.Acquire(context.Background()))
	assert.Equal(t, 210*time.Millisecond, clock.Now().Sub(start))
}

func TestRateLimiterConcurrentCallers(t *testing.T) {
	limiter, clock := newTestLimiter(50 * time.Millisecond)
	start := clock.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Acquire(context.Background()))
		}()
	}
	wg.Wait()

	// 20 acquires need at least 19 full intervals of simulated time
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 19*50*time.Millisecond)
}

func TestRateLimiterCancelledContext(t *testing.T) {
	limiter := tfl.NewRateLimiter(210 * time.Millisecond)

	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// Shared state survives the aborted wait
	assert.NoError(t, limiter.Acquire(context.Background()))
}
