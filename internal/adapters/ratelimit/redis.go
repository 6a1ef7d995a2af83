package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vitaee/FlexReviewApi/internal/adapters/observability"
)

// RedisLimiter counts hits in fixed windows keyed by client identifier, so
// the limit holds across API replicas sharing one Redis.
type RedisLimiter struct{ c *redis.Client }

func NewRedisLimiter(addr, pass string, db int) *RedisLimiter {
	return &RedisLimiter{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	n, err := r.c.Incr(ctx, bucket).Result()
	if err != nil {
		observability.ObserveRateLimit("redis", "error")
		return false, 0, err
	}
	if n == 1 {
		// first hit opens the window; expiry reaps idle buckets
		if err := r.c.Expire(ctx, bucket, window).Err(); err != nil {
			observability.ObserveRateLimit("redis", "error")
			return false, 0, err
		}
	}

	if n > int64(limit) {
		observability.ObserveRateLimit("redis", "limited")
		return false, 0, nil
	}
	observability.ObserveRateLimit("redis", "allowed")
	return true, limit - int(n), nil
}
