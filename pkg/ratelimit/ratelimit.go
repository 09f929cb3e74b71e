// Package ratelimit provides a per-key in-process token bucket limiter.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow checks if the request is allowed for the given key
	Allow(ctx context.Context, key string) (*Result, error)
}

// Limit defines the rate limit rule
type Limit struct {
	Rate  float64 // tokens per second
	Burst int
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// LocalRateLimiter keeps one token bucket per key in memory
type LocalRateLimiter struct {
	mu      sync.Mutex
	limit   Limit
	buckets map[string]*rate.Limiter
	now     func() time.Time
}

// NewLocalRateLimiter creates a limiter applying the same limit to every key
func NewLocalRateLimiter(limit Limit) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:   limit,
		buckets: make(map[string]*rate.Limiter),
		now:     time.Now,
	}
}

func (l *LocalRateLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Limit(l.limit.Rate), l.limit.Burst)
		l.buckets[key] = b
	}
	return b
}

// Allow consumes one token for key if available
func (l *LocalRateLimiter) Allow(_ context.Context, key string) (*Result, error) {
	b := l.bucket(key)
	now := l.now()
	res := &Result{Limit: l.limit.Burst}

	r := b.ReserveN(now, 1)
	if !r.OK() {
		return res, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		return res, nil
	}
	res.Allowed = true
	if remaining := int(b.TokensAt(now)); remaining > 0 {
		res.Remaining = remaining
	}
	return res, nil
}
