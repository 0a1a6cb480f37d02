// Package cache keeps short-lived dashboard stats in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "orbit:stats:"

type StatsCache interface {
	// Get reports a miss as (zero, false, nil).
	Get(ctx context.Context, eventID string) (models.EventStats, bool, error)
	Set(ctx context.Context, stats models.EventStats, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID string) error
}

// Connect initializes a Redis client from a redis:// URL or host:port.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

type RedisStatsCache struct {
	client *redis.Client
}

func NewRedisStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

func statsKey(eventID string) string {
	return statsKeyPrefix + eventID
}

func (c *RedisStatsCache) Get(ctx context.Context, eventID string) (models.EventStats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey(eventID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.EventStats{}, false, nil
		}
		return models.EventStats{}, false, err
	}

	var stats models.EventStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return models.EventStats{}, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return stats, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, stats models.EventStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(stats.EventID), raw, ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, eventID string) error {
	return c.client.Del(ctx, statsKey(eventID)).Err()
}

// NopStatsCache always misses. Used when Redis is not configured.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, string) (models.EventStats, bool, error) {
	return models.EventStats{}, false, nil
}
func (NopStatsCache) Set(context.Context, models.EventStats, time.Duration) error { return nil }
func (NopStatsCache) Invalidate(context.Context, string) error                      { return nil }
