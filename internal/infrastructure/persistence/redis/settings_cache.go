package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

const settingsKey = "student-risk:settings:thresholds"

var _ service.SettingsCache = (*SettingsCache)(nil)

// SettingsCache keeps the active thresholds in process memory (L1) and,
// when a client is given, in Redis (L2) so replicas share invalidations.
// SettingsCache 两级缓存：进程内 go-cache + Redis。
type SettingsCache struct {
	client redis.UniversalClient
	local  *gocache.Cache
	ttl    time.Duration
	logger logger.Logger
}

// NewSettingsCache creates the cache. client may be nil for a memory-only cache.
func NewSettingsCache(client redis.UniversalClient, ttl time.Duration, log logger.Logger) *SettingsCache {
	return &SettingsCache{
		client: client,
		local:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: log.WithComponent("settings_cache"),
	}
}

// Get returns the cached thresholds. A Redis hit refills the local tier.
func (c *SettingsCache) Get(ctx context.Context) (*models.ThresholdConfig, bool, error) {
	if v, ok := c.local.Get(settingsKey); ok {
		cfg := v.(models.ThresholdConfig)
		return &cfg, true, nil
	}
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", errors.ErrCacheOperation, err)
	}

	var cfg models.ThresholdConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logger.Warn(ctx, "discarding undecodable cached settings", logger.Fields{"error": err.Error()})
		_ = c.client.Del(ctx, settingsKey).Err()
		return nil, false, nil
	}
	c.local.Set(settingsKey, cfg, c.ttl)
	return &cfg, true, nil
}

// Set stores cfg in both tiers.
func (c *SettingsCache) Set(ctx context.Context, cfg models.ThresholdConfig) error {
	c.local.Set(settingsKey, cfg, c.ttl)
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCacheOperation, err)
	}
	if err := c.client.Set(ctx, settingsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCacheOperation, err)
	}
	return nil
}

// Invalidate drops the entry from both tiers.
func (c *SettingsCache) Invalidate(ctx context.Context) error {
	c.local.Delete(settingsKey)
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCacheOperation, err)
	}
	return nil
}

// InvalidateLocal drops only the in-process tier. It runs when another
// replica announces a settings change.
func (c *SettingsCache) InvalidateLocal(_ context.Context) {
	c.local.Delete(settingsKey)
}
