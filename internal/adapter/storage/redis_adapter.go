package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	guardKeyPrefix = "request:"
	guardKeyTTL    = 24 * time.Hour
)

// RedisGuard implements the idempotent request guard with SETNX. A request
// id stays claimed for the key TTL, long enough to absorb client retries.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (r *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, guardKeyPrefix+key, 1, guardKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisGuard) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, guardKeyPrefix+key).Err()
}
