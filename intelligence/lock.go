package intelligence

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const lockPrefix = "newsgap:run:"

// RedisLocker implements RunLocker on a shared redis instance so two
// concurrent runs for the same target cannot race each other.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, target string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, lockPrefix+target, time.Now().Unix(), ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, target string) error {
	return l.client.Del(ctx, lockPrefix+target).Err()
}
