package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"lexicon/internal/logger"
)

// Redis is a Redis-backed cache store. It supports prefix enumeration via
// SCAN, so invalidation removes tag-filtered export entries exactly.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis instance at the given URL
// (e.g. "redis://localhost:6379") and verifies the connection.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing Redis client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Transport failure degrades to a miss.
		logger.Warn("cache get failed", "module", "cache", "key", key, "error", err)
		return "", false
	}
	return val, true
}

func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// ListKeys enumerates stored keys matching the prefix.
func (c *Redis) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Verify Redis implements Store and the enumeration capability
var (
	_ Store     = (*Redis)(nil)
	_ KeyLister = (*Redis)(nil)
)
