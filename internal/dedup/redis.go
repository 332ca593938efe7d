package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the seen-set with Redis so the retention window survives
// process restarts and is shared across pipeline instances. Expiry is
// delegated to Redis key TTLs; no sweeper needed.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache parses redisURL, verifies connectivity and returns the cache.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Seen(ctx context.Context, source, fingerprint string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(source, fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (c *RedisCache) MarkSeen(ctx context.Context, source, fingerprint string) error {
	if err := c.client.Set(ctx, c.key(source, fingerprint), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(source, fingerprint string) string {
	return "dedup:" + source + ":" + fingerprint
}
