package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks_after_limit_within_window", func(t *testing.T) {
		c, _ := newTestClient(t)
		l := NewRateLimiter(c, 2, time.Minute)

		assert.True(t, l.Allow(ctx, "1.2.3.4"))
		assert.True(t, l.Allow(ctx, "1.2.3.4"))
		assert.False(t, l.Allow(ctx, "1.2.3.4"))
		assert.True(t, l.Allow(ctx, "5.6.7.8"), "keys are independent")
	})

	t.Run("window_resets", func(t *testing.T) {
		c, mr := newTestClient(t)
		l := NewRateLimiter(c, 1, time.Minute)

		assert.True(t, l.Allow(ctx, "k"))
		assert.False(t, l.Allow(ctx, "k"))
		assert.Equal(t, time.Minute, mr.TTL(rateLimitPrefix+"k"))

		mr.FastForward(time.Minute + time.Second)
		assert.True(t, l.Allow(ctx, "k"))
	})

	t.Run("fails_open_when_redis_is_down", func(t *testing.T) {
		c, mr := newTestClient(t)
		l := NewRateLimiter(c, 1, time.Minute)
		mr.Close()

		assert.True(t, l.Allow(ctx, "k"))
		assert.True(t, l.Allow(ctx, "k"))
	})
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}
