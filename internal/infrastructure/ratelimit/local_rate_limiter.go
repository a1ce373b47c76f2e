package ratelimit

import (
	"context"
	"time"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
)

var _ service.RateLimitService = (*LocalRateLimiter)(nil)

// LocalRateLimiter keeps buckets in process memory. It is used when Redis is
// disabled and as the fallback of RedisRateLimiter.
type LocalRateLimiter struct {
	buckets *TokenBucketPool
	now     func() time.Time
}

// NewLocalRateLimiter creates an in-memory limiter.
func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{buckets: NewTokenBucketPool(), now: time.Now}
}

// Allow consumes one request from the bucket of scope and identifier.
// A non-positive limit disables limiting for the call.
func (l *LocalRateLimiter) Allow(_ context.Context, scope, identifier string, limitPerMinute int) (bool, int, time.Time, error) {
	now := l.now()
	if limitPerMinute <= 0 {
		return true, 0, now, nil
	}
	allowed, remaining, resetAt := l.buckets.GetOrCreate(bucketKey(scope, identifier), limitPerMinute, now).Take(now)
	return allowed, remaining, resetAt, nil
}

// ResetLimit clears the bucket for an identifier.
func (l *LocalRateLimiter) ResetLimit(_ context.Context, scope, identifier string) error {
	l.buckets.Remove(bucketKey(scope, identifier))
	return nil
}

// Cleanup drops buckets idle for longer than maxIdle.
func (l *LocalRateLimiter) Cleanup(maxIdle time.Duration) int {
	return l.buckets.Cleanup(maxIdle, l.now())
}

func bucketKey(scope, identifier string) string {
	return scope + ":" + identifier
}
