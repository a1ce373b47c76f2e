// Package ratelimit provides the per-minute request limiter used by the HTTP layer.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting.
// It refills continuously at capacity tokens per minute.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	rate       float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a full bucket holding capacity tokens that refills
// at rate tokens per second.
func NewTokenBucket(capacity, rate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		rate:       rate,
		lastRefill: now,
	}
}

// Take consumes one token at time now. It returns whether the token was
// available, the whole tokens left and when the bucket will be full again.
func (tb *TokenBucket) Take(now time.Time) (bool, int, time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	allowed := tb.tokens >= 1
	if allowed {
		tb.tokens--
	}
	return allowed, int(math.Floor(tb.tokens)), now.Add(tb.untilFull())
}

// refill must be called with the lock held.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens = math.Min(tb.tokens+elapsed*tb.rate, tb.capacity)
	tb.lastRefill = now
}

func (tb *TokenBucket) untilFull() time.Duration {
	if tb.tokens >= tb.capacity || tb.rate <= 0 {
		return 0
	}
	return time.Duration(math.Ceil((tb.capacity - tb.tokens) / tb.rate * float64(time.Second)))
}

// TokenBucketPool manages one bucket per key with idle cleanup.
type TokenBucketPool struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucketEntry
}

type tokenBucketEntry struct {
	bucket   *TokenBucket
	capacity int
	lastUsed time.Time
}

// NewTokenBucketPool creates an empty pool.
func NewTokenBucketPool() *TokenBucketPool {
	return &TokenBucketPool{buckets: make(map[string]*tokenBucketEntry)}
}

// GetOrCreate returns the bucket for key, creating a full one when missing or
// when the configured limit for the key changed.
func (p *TokenBucketPool) GetOrCreate(key string, limitPerMinute int, now time.Time) *TokenBucket {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.buckets[key]; ok && entry.capacity == limitPerMinute {
		entry.lastUsed = now
		return entry.bucket
	}
	capacity := float64(limitPerMinute)
	bucket := NewTokenBucket(capacity, capacity/60.0, now)
	p.buckets[key] = &tokenBucketEntry{bucket: bucket, capacity: limitPerMinute, lastUsed: now}
	return bucket
}

// Remove removes a bucket from the pool.
func (p *TokenBucketPool) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buckets, key)
}

// Cleanup removes buckets idle for longer than maxIdle and returns how many were dropped.
func (p *TokenBucketPool) Cleanup(maxIdle time.Duration, now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for key, entry := range p.buckets {
		if now.Sub(entry.lastUsed) > maxIdle {
			delete(p.buckets, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of buckets in the pool.
func (p *TokenBucketPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}
