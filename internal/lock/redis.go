package lock

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	redisKeyPrefix   = "reservation-service:lock:"
	defaultLockTTL   = 30 * time.Second
	defaultRetryWait = 25 * time.Millisecond
)

// deletes the key only while it still holds our token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes across service instances with SET NX PX. The TTL
// bounds how long a crashed holder can keep a site locked.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, retryWait: defaultRetryWait}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	k := redisKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled; release regardless
			if err := unlockScript.Run(context.Background(), l.client, []string{k}, token).Err(); err != nil && err != redis.Nil {
				log.Printf("[RedisLocker] failed to release %s: %v", key, err)
			}
		})
	}
	return release, nil
}
