package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

var _ service.RateLimitService = (*RedisRateLimiter)(nil)

const defaultKeyPrefix = "student-risk:ratelimit"

// Lua script for atomic token bucket operations.
// rate is tokens per second, now is in milliseconds.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local elapsed = math.max(0, now - last_refill)
tokens = math.min(tokens + elapsed * rate / 1000, capacity)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

local reset_ms = 0
if tokens < capacity then
    reset_ms = math.ceil((capacity - tokens) / rate * 1000)
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', tostring(now))
redis.call('PEXPIRE', key, reset_ms + 60000)

return {allowed, math.floor(tokens), reset_ms}
`)

// RedisRateLimiter implements distributed rate limiting using Redis.
// When Redis fails it degrades to a local token bucket instead of rejecting traffic.
type RedisRateLimiter struct {
	client    redis.UniversalClient
	fallback  *LocalRateLimiter
	keyPrefix string
	logger    logger.Logger
	now       func() time.Time
}

// NewRedisRateLimiter creates a new Redis-based rate limiter.
func NewRedisRateLimiter(client redis.UniversalClient, log logger.Logger) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, errors.ErrInternal("redis client is required")
	}
	return &RedisRateLimiter{
		client:    client,
		fallback:  NewLocalRateLimiter(),
		keyPrefix: defaultKeyPrefix,
		logger:    log.WithComponent("rate_limiter"),
		now:       time.Now,
	}, nil
}

// Allow checks if a request is allowed under the rate limit.
func (rl *RedisRateLimiter) Allow(ctx context.Context, scope, identifier string, limitPerMinute int) (bool, int, time.Time, error) {
	now := rl.now()
	if limitPerMinute <= 0 {
		return true, 0, now, nil
	}

	rate := float64(limitPerMinute) / 60.0
	res, err := tokenBucketScript.Run(ctx, rl.client, []string{rl.buildKey(scope, identifier)},
		limitPerMinute, rate, now.UnixMilli()).Int64Slice()
	if err != nil || len(res) < 3 {
		if err == nil {
			err = fmt.Errorf("unexpected script result %v", res)
		}
		rl.logger.Warn(ctx, "redis rate limit check failed, using local bucket", logger.Fields{
			"scope": scope,
			"error": err.Error(),
		})
		return rl.fallback.Allow(ctx, scope, identifier, limitPerMinute)
	}

	return res[0] == 1, int(res[1]), now.Add(time.Duration(res[2]) * time.Millisecond), nil
}

// ResetLimit resets the rate limit for a specific key.
func (rl *RedisRateLimiter) ResetLimit(ctx context.Context, scope, identifier string) error {
	_ = rl.fallback.ResetLimit(ctx, scope, identifier)
	if err := rl.client.Del(ctx, rl.buildKey(scope, identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCacheOperation, err)
	}
	rl.logger.Debug(ctx, "Rate limit reset", logger.Fields{"scope": scope, "identifier": identifier})
	return nil
}

func (rl *RedisRateLimiter) buildKey(scope, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", rl.keyPrefix, scope, identifier)
}
