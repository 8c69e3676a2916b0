package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window limiter shared between service instances
// INCR on the key, EXPIRE set when the window opens
type RedisLimiter struct {
	cli    *redis.Client
	max    int64
	window time.Duration
}

func NewRedisLimiter(ctx context.Context, url string, max int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}

	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisLimiter{cli: cli, max: int64(max), window: window}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.cli.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if n == 1 {
		l.cli.Expire(ctx, "ratelimit:"+key, l.window)
	}
	return n <= l.max, nil
}

func (l *RedisLimiter) Close() error {
	return l.cli.Close()
}
