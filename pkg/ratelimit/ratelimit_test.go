package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRateLimiterBurst(t *testing.T) {
	fixed := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	l := NewLocalRateLimiter(Limit{Rate: 1, Burst: 2})
	l.now = func() time.Time { return fixed }

	for i := 0; i < 2; i++ {
		res, err := l.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	other, err := l.Allow(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys have independent buckets")
}

func TestLocalRateLimiterRefill(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	l := NewLocalRateLimiter(Limit{Rate: 1, Burst: 1})
	l.now = func() time.Time { return now }

	res, _ := l.Allow(context.Background(), "k")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(context.Background(), "k")
	assert.False(t, res.Allowed)

	now = now.Add(time.Second)
	res, _ = l.Allow(context.Background(), "k")
	assert.True(t, res.Allowed)
}
