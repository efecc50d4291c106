package bookingconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the raw key/value snapshot between reads.
type Cache interface {
	Load(ctx context.Context) (map[string]string, bool, error)
	Save(ctx context.Context, values map[string]string) error
	Invalidate(ctx context.Context) error
}

// MaxCacheTTL bounds how stale a reader may observe configuration.
const MaxCacheTTL = 60 * time.Second

const (
	defaultCacheKey = "booking_config:snapshot"
	// marks a snapshot as present even when no keys are stored
	loadedField = "__loaded"
)

// RedisCache stores the snapshot as a redis hash with a TTL.
type RedisCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 || ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}
	return &RedisCache{rdb: rdb, key: defaultCacheKey, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context) (map[string]string, bool, error) {
	vals, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis hgetall: %w", err)
	}
	if _, ok := vals[loadedField]; !ok {
		return nil, false, nil
	}
	delete(vals, loadedField)
	return vals, true, nil
}

func (c *RedisCache) Save(ctx context.Context, values map[string]string) error {
	fields := make(map[string]any, len(values)+1)
	for k, v := range values {
		fields[k] = v
	}
	fields[loadedField] = "1"

	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, c.key)
		p.HSet(ctx, c.key, fields)
		p.Expire(ctx, c.key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save snapshot: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

type noCache struct{}

func (noCache) Load(context.Context) (map[string]string, bool, error) { return nil, false, nil }
func (noCache) Save(context.Context, map[string]string) error         { return nil }
func (noCache) Invalidate(context.Context) error                      { return nil }
