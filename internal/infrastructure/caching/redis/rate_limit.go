package redis

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
)

const rateLimitPrefix = "tracking:ratelimit:"

// RateLimiter is a fixed-window counter shared by every replica.
type RateLimiter struct {
	c      *Client
	limit  int
	window time.Duration
}

func NewRateLimiter(c *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{c: c, limit: limit, window: window}
}

// Allow counts one request for key. Redis failures fail open.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	k := rateLimitPrefix + key
	count, err := l.c.rdb.Incr(ctx, k).Result()
	if err != nil {
		zlog.Warn().Err(err).Str("key", key).Msg("rate limit check failed, allowing")
		return true
	}
	if count == 1 {
		_ = l.c.rdb.Expire(ctx, k, l.window).Err()
	}
	return count <= int64(l.limit)
}
