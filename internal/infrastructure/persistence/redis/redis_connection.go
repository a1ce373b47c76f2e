// Package redis provides the Redis connection and the settings cache built on it.
// A single address connects to a standalone server; several addresses connect to a cluster.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5 * time.Second
	defaultIOTimeout    = 3 * time.Second
	defaultMaxRetries   = 3
)

// RedisConnection manages Redis client lifecycle and health monitoring.
type RedisConnection struct {
	cfg    *config.RedisConfig
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection creates a connection manager. Call Connect before use.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		cfg:    cfg,
		logger: log.WithComponent("redis"),
	}
}

// NewRedisConnectionFromClient wraps an existing client, e.g. one pointed at miniredis.
func NewRedisConnectionFromClient(client redis.UniversalClient, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		cfg:    &config.RedisConfig{Enabled: true},
		client: client,
		logger: log.WithComponent("redis"),
	}
}

// Connect establishes the connection pool and verifies it with a ping.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	if rc.client != nil {
		rc.logger.Warn(ctx, "Redis connection already initialized")
		return nil
	}
	if len(rc.cfg.Addresses) == 0 {
		return fmt.Errorf("%w: redis addresses not configured", errors.ErrCacheOperation)
	}

	opts := &redis.UniversalOptions{
		Addrs:        rc.cfg.Addresses,
		Password:     rc.cfg.Password,
		DB:           rc.cfg.DB,
		PoolSize:     rc.cfg.PoolSize,
		MinIdleConns: rc.cfg.MinIdleConns,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultIOTimeout,
		WriteTimeout: defaultIOTimeout,
		MaxRetries:   defaultMaxRetries,
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = defaultMinIdleConns
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err, logger.Fields{"addresses": rc.cfg.Addresses})
		_ = client.Close()
		return fmt.Errorf("%w: redis ping failed: %v", errors.ErrCacheOperation, err)
	}

	rc.client = client
	rc.logger.Info(ctx, "Redis connection established successfully", logger.Fields{
		"addresses": rc.cfg.Addresses,
		"pool_size": opts.PoolSize,
	})
	return nil
}

// Client returns the underlying client, or nil before Connect.
func (rc *RedisConnection) Client() redis.UniversalClient {
	return rc.client
}

// Ping checks Redis server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if rc.client == nil {
		return fmt.Errorf("%w: redis connection not initialized", errors.ErrCacheOperation)
	}
	return rc.client.Ping(ctx).Err()
}

// HealthCheck reports connectivity, latency and pool statistics.
func (rc *RedisConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	if rc.client == nil {
		return nil, fmt.Errorf("%w: redis connection not initialized", errors.ErrCacheOperation)
	}

	health := make(map[string]interface{})
	start := time.Now()
	err := rc.client.Ping(ctx).Err()
	health["connected"] = err == nil
	health["latency_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health, err
	}

	stats := rc.client.PoolStats()
	health["status"] = "healthy"
	health["total_conns"] = stats.TotalConns
	health["idle_conns"] = stats.IdleConns
	health["pool_timeouts"] = stats.Timeouts
	return health, nil
}

// Close gracefully closes the connection pool.
func (rc *RedisConnection) Close() error {
	if rc.client == nil {
		return nil
	}
	if err := rc.client.Close(); err != nil {
		rc.logger.Error(context.Background(), "Failed to close Redis connection", err)
		return err
	}
	rc.client = nil
	rc.logger.Info(context.Background(), "Redis connection closed successfully")
	return nil
}
