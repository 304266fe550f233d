package noise

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces warm-up cache keys in a shared Redis instance.
const redisKeyPrefix = "apt:warmup:"

// RedisCacheOptions configures a RedisCache connection.
type RedisCacheOptions struct {
	// URL is the Redis connection string, e.g. "redis://localhost:6379".
	URL string

	// TTL is how long a cached warm-up response survives. Zero means the
	// default of 10 minutes.
	TTL time.Duration

	// ConnectTimeout bounds the initial Ping used to verify connectivity.
	ConnectTimeout time.Duration
}

// RedisCache is a Cache backed by Redis, letting multiple Isolator
// instances across processes or goroutines share warm-up results for the
// same reference input.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache dials opts.URL and returns a ready-to-use RedisCache.
func NewRedisCache(opts RedisCacheOptions) (*RedisCache, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.TTL == 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("noise: parsing redis URL: %w", err)
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("noise: connecting to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: opts.TTL}, nil
}

// Get reports the cached response for key, if any.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("noise: reading warm-up cache: %w", err)
	}
	return value, true, nil
}

// Set stores value under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value string) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("noise: writing warm-up cache: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
