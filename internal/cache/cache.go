package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// Cache is a small read-through cache used by the query facade. Get reports
// whether the key was present so callers can distinguish a miss from a
// cached zero value.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, out any) (bool, error)
	Delete(ctx context.Context, key string) error
}

const localCacheSize = 64000

type redisCache struct {
	cache *cache.Cache
}

// NewRedisCache connects to redis at addr and layers a small in-process
// TinyLFU tier in front of it.
func NewRedisCache(ctx context.Context, addr string) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	c := cache.New(&cache.Options{
		Redis:      client,
		LocalCache: cache.NewTinyLFU(localCacheSize, time.Minute),
	})
	return &redisCache{cache: c}, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (r *redisCache) Get(ctx context.Context, key string, out any) (bool, error) {
	err := r.cache.Get(ctx, key, out)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}

type noopCache struct{}

// NewNoop returns a cache that stores nothing. Used when no redis address
// is configured.
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Get(context.Context, string, any) (bool, error)       { return false, nil }
func (noopCache) Delete(context.Context, string) error                 { return nil }
