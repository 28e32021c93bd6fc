package cache

import (
	"context"
	"time"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(addr, password string, db int, prefix string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return errors.Wrap(c.client.Ping(ctx).Err(), "redis ping")
}

func (c *RedisCache) Get(ctx context.Context, key string, out any) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrapf(err, "redis get %s", key)
	}
	return errors.Wrapf(jsoncompat.Unmarshal(data, out), "decode cached %s", key)
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := jsoncompat.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return errors.Wrapf(c.client.Set(ctx, c.key(key), data, expiration).Err(), "redis set %s", key)
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(c.client.Del(ctx, c.key(key)).Err(), "redis del %s", key)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
