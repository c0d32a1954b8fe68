// Package cache stores short-lived JSON values keyed by string.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yectos/projects-api/internal/config"
	"go.uber.org/zap"
)

// Cache is a JSON value cache
type Cache interface {
	// Get decodes the value stored at key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// DashboardStatsKey is the cache key holding a user's dashboard statistics
func DashboardStatsKey(userID string) string {
	return "projects:dashboard:stats:" + userID
}

// DashboardChartsKey is the cache key holding a user's dashboard charts
func DashboardChartsKey(userID string) string {
	return "projects:dashboard:charts:" + userID
}

// New returns a Redis backed cache when enabled and a no-op cache otherwise
func New(cfg *config.CacheConfig, logger *zap.Logger) Cache {
	if !cfg.Enabled {
		logger.Info("Dashboard cache disabled")
		return NoopCache{}
	}
	logger.Info("Dashboard cache enabled", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}))
}

// RedisCache implements Cache on a go-redis client
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, interface{}) (bool, error)       { return false, nil }
func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, ...string) error                       { return nil }
func (NoopCache) Ping(context.Context) error                                    { return nil }
func (NoopCache) Close() error                                                  { return nil }
