package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/baechuer/tracking-service/internal/transport/http/response"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// MemoryLimiter is a per-process fixed window limiter used when no Redis is
// configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.lastReset) > rl.window {
		rl.buckets[key] = &bucket{tokens: rl.limit - 1, lastReset: now}
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (rl *MemoryLimiter) cleanup(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-t.C:
			rl.mu.Lock()
			now := rl.now()
			for k, b := range rl.buckets {
				if now.Sub(b.lastReset) > 2*rl.window {
					delete(rl.buckets, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *MemoryLimiter) Close() { close(rl.stop) }

// IngestLimit throttles event ingestion per authenticated user, else per
// client IP.
func IngestLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), ingestKey(r)) {
				w.Header().Set("Retry-After", "60")
				response.Fail(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded", nil, response.RequestIDFromRequest(r))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ingestKey(r *http.Request) string {
	if uid := UserID(r); uid != "" {
		return "u:" + uid
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
