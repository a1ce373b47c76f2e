package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

func newTestRedisLimiter(t *testing.T, now time.Time) (*miniredis.Miniredis, *RedisRateLimiter) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	rl, err := NewRedisRateLimiter(client, logger.NewNoopLogger())
	require.NoError(t, err)
	clock := func() time.Time { return now }
	rl.now = clock
	rl.fallback.now = clock
	return s, rl
}

func TestRedisRateLimiter_AllowUntilExhausted(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	_, rl := newTestRedisLimiter(t, now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := rl.Allow(ctx, "ip", "127.0.0.1", 3)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, remaining, resetAt, err := rl.Allow(ctx, "ip", "127.0.0.1", 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	// Other identifiers have their own bucket.
	allowed, _, _, err = rl.Allow(ctx, "ip", "10.0.0.1", 3)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, rl.ResetLimit(ctx, "ip", "127.0.0.1"))
	allowed, _, _, err = rl.Allow(ctx, "ip", "127.0.0.1", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_Refill(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	_, rl := newTestRedisLimiter(t, now)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, _, err := rl.Allow(ctx, "admin", "u1", 2)
		require.NoError(t, err)
	}
	allowed, _, _, _ := rl.Allow(ctx, "admin", "u1", 2)
	assert.False(t, allowed)

	// Two per minute refills one token every 30s.
	later := now.Add(30 * time.Second)
	rl.now = func() time.Time { return later }
	allowed, remaining, _, err := rl.Allow(ctx, "admin", "u1", 2)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRedisRateLimiter_FallsBackWhenRedisDown(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s, rl := newTestRedisLimiter(t, now)
	s.Close()

	ctx := context.Background()
	allowed, remaining, _, err := rl.Allow(ctx, "ip", "127.0.0.1", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, err = rl.Allow(ctx, "ip", "127.0.0.1", 1)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisRateLimiter_RequiresClient(t *testing.T) {
	_, err := NewRedisRateLimiter(nil, logger.NewNoopLogger())
	assert.Error(t, err)
}

func TestLocalRateLimiter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalRateLimiter()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, remaining, _, err := l.Allow(ctx, "ip", "a", 2)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, _, _, _ = l.Allow(ctx, "ip", "a", 2)
	assert.True(t, allowed)
	allowed, _, resetAt, _ := l.Allow(ctx, "ip", "a", 2)
	assert.False(t, allowed)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	// Zero disables limiting.
	allowed, _, _, _ = l.Allow(ctx, "ip", "a", 0)
	assert.True(t, allowed)

	require.NoError(t, l.ResetLimit(ctx, "ip", "a"))
	allowed, _, _, _ = l.Allow(ctx, "ip", "a", 2)
	assert.True(t, allowed)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, l.Cleanup(10*time.Minute))
}

func TestTokenBucketPool_LimitChangeRecreatesBucket(t *testing.T) {
	now := time.Now()
	p := NewTokenBucketPool()
	b1 := p.GetOrCreate("k", 5, now)
	assert.Same(t, b1, p.GetOrCreate("k", 5, now))
	assert.NotSame(t, b1, p.GetOrCreate("k", 10, now))
	assert.Equal(t, 1, p.Size())
}
