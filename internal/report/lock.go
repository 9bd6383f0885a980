package report

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker grants a key to a single caller until ttl expires.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisLocker shares run locks between replicas
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// LocalLocker is the single-process fallback used when Redis is not configured
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	for k, expiry := range l.held {
		if !now.Before(expiry) {
			delete(l.held, k)
		}
	}

	if _, ok := l.held[key]; ok {
		return false, nil
	}

	l.held[key] = now.Add(ttl)
	return true, nil
}
