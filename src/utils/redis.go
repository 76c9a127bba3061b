package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisCache wraps the shared Redis client. A nil client means Redis is not
// configured: reads miss, writes are skipped and nothing is blacklisted.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	if !c.enabled() {
		return "", false, nil
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis get %s", key)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// BlacklistToken rejects the token id until it would have expired anyway.
func (c *RedisCache) BlacklistToken(ctx context.Context, tokenID string, expiresIn time.Duration) error {
	if expiresIn <= 0 {
		return nil
	}
	return c.Set(ctx, blacklistKey(tokenID), "1", expiresIn)
}

func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	_, found, err := c.Get(ctx, blacklistKey(tokenID))
	if err != nil {
		return false, errors.Wrap(err, "check blacklist")
	}
	return found, nil
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}
