// Package cache provides Redis-backed adapters used when the service runs
// with more than one replica and in-process mutexes cannot serialize a sale.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from URL or host:port input.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisSaleLocker implements the per-sale exclusive section across replicas
// with SETNX + TTL. The TTL bounds how long a crashed holder can block a
// sale; every operation completes synchronously well inside it.
type RedisSaleLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryEvery time.Duration
}

func NewRedisSaleLocker(client *redis.Client, ttl time.Duration) *RedisSaleLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisSaleLocker{client: client, ttl: ttl, retryEvery: 25 * time.Millisecond}
}

func (l *RedisSaleLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := "settlement:lock:" + key
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Release only if we still own the lock; a TTL expiry
				// followed by another holder must not be clobbered.
				_ = releaseScript.Run(context.Background(), l.client, []string{redisKey}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryEvery):
		}
	}
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)
