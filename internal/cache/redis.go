package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/DhawalShankar/vartalang-sub001/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// KeyForNotifCount generates the Redis key for a user's notification count.
func (c *RedisCache) KeyForNotifCount(userID uint64) string {
	return fmt.Sprintf("notif:count:%d", userID)
}

// UpdateNotifCount writes a user's notification count with a fresh TTL.
func (c *RedisCache) UpdateNotifCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForNotifCount(userID), count, time.Hour).Err()
}

// CountInWindow increments a fixed-window counter and returns the new value.
// The window TTL is applied only when the key is first created, so the
// window does not slide. Used by the redis-backed rate limiter.
func (c *RedisCache) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
