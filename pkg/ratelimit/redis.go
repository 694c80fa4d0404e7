package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a bounded external request counter. Implementations must not
// keep per-caller state in process memory: the service runs as multiple
// instances and a counter that lives in one of them limits nothing.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// RedisLimiter implements a fixed-window counter on Redis (INCR + EXPIRE).
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowStamp := time.Now().Unix() / int64(l.window.Seconds())
	counterKey := fmt.Sprintf("rl:%s:%d", key, windowStamp)

	n, err := l.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate counter: %w", err)
	}

	if n == 1 {
		// First hit in this window owns the expiry.
		l.client.Expire(ctx, counterKey, l.window)
	}

	return n <= int64(l.limit), nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
