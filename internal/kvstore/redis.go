// redis.go — go-redis v9 adapters implementing Store and Locker.
// Drop this file alongside store.go; nothing else needs to change.
package kvstore

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore wraps a go-redis client and satisfies the Store interface.
type RedisStore struct {
	c *goredis.Client
}

// NewRedisStore creates a RedisStore from a go-redis Client.
func NewRedisStore(c *goredis.Client) *RedisStore {
	return &RedisStore{c: c}
}

func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.c.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.c.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return s.c.Del(ctx, keys...).Err()
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.c.Incr(ctx, key).Result()
}

func (s *RedisStore) Decr(ctx context.Context, key string) (int64, error) {
	return s.c.Decr(ctx, key).Result()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.c.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.c.TTL(ctx, key).Result()
}

// redisLockTTL bounds how long a crashed holder can wedge a lock. It is well
// above the 5 s acquisition wait used by the CSRF manager.
const redisLockTTL = 10 * time.Second

// redisLockPoll is the retry interval while waiting for a contended lock.
const redisLockPoll = 50 * time.Millisecond

// RedisLocker implements Locker with SET NX PX polling.
type RedisLocker struct {
	c *goredis.Client
}

// NewRedisLocker creates a RedisLocker from a go-redis Client.
func NewRedisLocker(c *goredis.Client) *RedisLocker {
	return &RedisLocker{c: c}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, name string, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for {
		ok, err := l.c.SetNX(ctx, "lock:"+name, "1", redisLockTTL).Result()
		if err == nil && ok {
			return true
		}
		// Redis error or lock held — retry until the wait budget runs out.
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(redisLockPoll):
		}
	}
}

func (l *RedisLocker) Release(name string) {
	// Best-effort: the lock may already have expired; errors are swallowed
	// so cleanup can never fail the request that triggered it.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = l.c.Del(ctx, "lock:"+name).Err()
}
