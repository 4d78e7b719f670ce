package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "dedupe:derivation:"

// RedisDeduper is a Redis-backed Deduper. This is the recommended
// implementation for distributed deployments where multiple instances
// process events for the same firm.
type RedisDeduper struct {
	client *redis.Client
}

// NewRedisDeduper constructs a Redis-backed deduper.
func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

// Reserve claims a derivation key atomically with SET NX. The TTL bounds the
// reservation to the compliance window so keys clean themselves up.
func (d *RedisDeduper) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, dedupeKeyPrefix+key, "1", ttl).Result()
}

// Release drops a reservation, letting the derivation be retried. Used when
// task creation fails after the key was claimed.
func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, dedupeKeyPrefix+key).Err()
}
