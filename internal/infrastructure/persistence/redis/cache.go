// Package redis implements the user-stats cache. The cache is strictly
// optional: every write path invalidates the per-user key, and read
// paths fall back to PostgreSQL on any cache failure.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/application/query"
	"github.com/BrunoPessoa22/tutoria-ia-backend/internal/domain/shared"
)

// Config holds Redis connection settings.
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:          url,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient connects and pings a Redis client.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: failed to parse URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to ping: %w", err)
	}
	return client, nil
}

// StatsCache caches user_stats rows with a TTL. It implements both
// query.StatsCache and the write-side invalidator.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates the cache. TTL bounds staleness if an
// invalidation is ever lost.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(userID uuid.UUID) string {
	return "user_stats:" + userID.String()
}

// GetUserStats returns the cached stats or shared.ErrNotFound on a miss.
func (c *StatsCache) GetUserStats(ctx context.Context, userID uuid.UUID) (*query.UserStats, error) {
	data, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.NewDomainError("stats", "CacheGet", shared.ErrNotFound, "cache miss")
		}
		return nil, fmt.Errorf("redis: failed to get stats: %w", err)
	}

	var stats query.UserStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal stats: %w", err)
	}
	return &stats, nil
}

// SetUserStats stores the stats under the per-user key.
func (c *StatsCache) SetUserStats(ctx context.Context, stats *query.UserStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(stats.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set stats: %w", err)
	}
	return nil
}

// InvalidateUserStats drops the cached entry for a user. Deleting a
// missing key is a no-op, not an error.
func (c *StatsCache) InvalidateUserStats(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis: failed to invalidate stats: %w", err)
	}
	return nil
}
