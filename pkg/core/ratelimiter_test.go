package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterRejectsBadRate(t *testing.T) {
	_, err := NewRateLimiter(0, 1)
	require.Error(t, err)
}

func TestRateLimiterBurstIsImmediate(t *testing.T) {
	limiter, err := NewRateLimiter(1, 3)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRateLimiterThrottles(t *testing.T) {
	limiter, err := NewRateLimiter(50, 1)
	require.NoError(t, err)

	require.NoError(t, limiter.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestRateLimiterHonorsContext(t *testing.T) {
	limiter, err := NewRateLimiter(0.01, 1)
	require.NoError(t, err)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}
