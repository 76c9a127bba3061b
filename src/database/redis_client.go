package database

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to uri. An empty uri means Redis is not configured and
// returns a nil client; callers skip the Redis backed features.
func NewRedis(ctx context.Context, uri string) (*redis.Client, error) {
	if uri == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: uri,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}
