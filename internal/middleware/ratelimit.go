package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/wma-backend/internal/config"
	"github.com/stemsi/wma-backend/internal/response"
)

// Limiter decides whether one more request from key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects clients that exceed the limiter's budget. Limiter errors
// let the request through so a Redis outage does not lock everyone out.
func RateLimit(limiter Limiter, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "ratelimit").Logger()

	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("Rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// NewAuthLimiter builds the limiter for the configured store.
func NewAuthLimiter(store string, rdb *redis.Client, limit int, window time.Duration) (Limiter, error) {
	switch store {
	case config.RateLimitStoreRedis, "":
		return NewRedisLimiter(rdb, limit, window), nil
	case config.RateLimitStoreMemory:
		return NewMemoryLimiter(limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", store)
	}
}

// ─── Redis fixed window ────────────────────────────────────────────

// RedisLimiter counts requests per client in a fixed window shared by every
// server instance.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit requests per client every window.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	key := config.CacheKey.AuthRateLimitKey(ip)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}

// ─── In-memory token bucket ────────────────────────────────────────

// MemoryLimiter is a per-process token bucket for single-instance deployments.
// Run must be started to evict idle clients.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewMemoryLimiter creates a MemoryLimiter (e.g., 10 requests per minute).
func NewMemoryLimiter(rate int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{tokens: l.rate, lastSeen: now}
		l.visitors[key] = v
	}

	// Refill tokens based on elapsed time.
	if refill := int(now.Sub(v.lastSeen)/l.interval) * l.rate; refill > 0 {
		v.tokens = min(v.tokens+refill, l.rate)
		v.lastSeen = now
	}

	if v.tokens <= 0 {
		return false, nil
	}
	v.tokens--
	return true, nil
}

// Run evicts idle visitors every interval until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Cleanup drops visitors whose bucket would be full again on their next
// request and returns how many were removed.
func (l *MemoryLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.interval {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}
