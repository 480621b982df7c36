// Package numbering provides the Redis counter backend for document numbers.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	corenum "logistix/internal/core/numbering"
)

// DefaultKeyPrefix namespaces counter keys in a shared Redis.
const DefaultKeyPrefix = "logistix:counter:"

// Incrementer is the slice of redis.Cmdable the counter needs.
// *redis.Client and *redis.ClusterClient satisfy it.
type Incrementer interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

var _ corenum.CounterStore = (*RedisCounter)(nil)

// RedisCounter keeps tenant counters in Redis. INCR is atomic on the server,
// so instances sharing one Redis never hand out the same value.
// Redis must run with persistence (AOF) or counters can move backwards
// after a restart.
type RedisCounter struct {
	client Incrementer
	prefix string
}

// NewRedisCounter creates a counter store. An empty prefix uses DefaultKeyPrefix.
func NewRedisCounter(client Incrementer, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisCounter{client: client, prefix: prefix}
}

// IncrementAndGet implements corenum.CounterStore.
func (c *RedisCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Incr(ctx, c.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return v, nil
}

// Set forces a counter to value.
func (c *RedisCounter) Set(ctx context.Context, key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("counter %s: value must not be negative", key)
	}
	if err := c.client.Set(ctx, c.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Get returns the last issued value, or 0 for an unused counter.
func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}
	return client, nil
}
