package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tutorhive/booking-api/pkg/config"
)

// RedisLocker serializes per-teacher mutations across instances using a
// SETNX lease. The TTL bounds how long a crashed holder can wedge a teacher.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

// NewRedisLocker connects to Redis and verifies it with a ping.
func NewRedisLocker(cfg config.RedisConfig) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis lock: %w", err)
	}

	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return &RedisLocker{client: client, ttl: ttl, retryWait: 25 * time.Millisecond}, nil
}

// Acquire polls SETNX until the lease is obtained or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, teacherID string) (func(), error) {
	key := fmt.Sprintf("lock:teacher:%s", teacherID)

	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire teacher lock: %w", err)
		}
		if ok {
			release := func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				l.client.Del(releaseCtx, key)
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases the underlying Redis connection.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
