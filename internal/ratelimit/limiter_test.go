package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/ratelimit"
)

func TestDomainLimiter_SpacesSameDomain(t *testing.T) {
	limiter := ratelimit.NewDomainLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx, "amazon.fr"))
	require.NoError(t, limiter.Acquire(ctx, "amazon.fr"))
	require.NoError(t, limiter.Acquire(ctx, "amazon.fr"))

	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestDomainLimiter_DomainsIndependent(t *testing.T) {
	limiter := ratelimit.NewDomainLimiter(200 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx, "amazon.fr"))
	require.NoError(t, limiter.Acquire(ctx, "bol.com"))
	require.NoError(t, limiter.Acquire(ctx, "fnac.com"))

	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestDomainLimiter_ConcurrentCallersQueue(t *testing.T) {
	const interval = 30 * time.Millisecond
	const callers = 5

	limiter := ratelimit.NewDomainLimiter(interval)
	ctx := context.Background()

	var mu sync.Mutex
	var times []time.Time
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Acquire(ctx, "amazon.fr"))
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, times, callers)
	for i := 1; i < len(times); i++ {
		for j := 0; j < i; j++ {
			gap := times[i].Sub(times[j])
			if gap < 0 {
				gap = -gap
			}
			assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond,
				"acquisitions %d and %d too close together", j, i)
		}
	}
}

func TestDomainLimiter_PerDomainOverride(t *testing.T) {
	limiter := ratelimit.NewDomainLimiter(time.Hour)
	limiter.SetInterval("fast.example.com", 10*time.Millisecond)

	assert.Equal(t, 10*time.Millisecond, limiter.Interval("fast.example.com"))
	assert.Equal(t, time.Hour, limiter.Interval("slow.example.com"))

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, limiter.Acquire(ctx, "fast.example.com"))
	require.NoError(t, limiter.Acquire(ctx, "fast.example.com"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDomainLimiter_ContextCancelled(t *testing.T) {
	limiter := ratelimit.NewDomainLimiter(time.Hour)
	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx, "amazon.fr"))

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(cancelCtx, "amazon.fr")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
