package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/auth"
	"github.com/gokatarajesh/student-toolkit/internal/metrics"
	httperrors "github.com/gokatarajesh/student-toolkit/pkg/http/errors"
)

// Counter counts hits on key within the current fixed window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a fixed-window counter shared by all API instances.
type RedisCounter struct {
	redis  *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisCounter{redis: client, prefix: prefix}
}

// Hit increments the counter for the window containing now. The key expires
// with the window.
func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := time.Now().UnixNano() / int64(window)
	redisKey := fmt.Sprintf("%s:%s:%d", c.prefix, key, bucket)

	pipe := c.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit hit %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Limiter rejects callers that exceed limit requests per window.
type Limiter struct {
	counter Counter
	route   string
	limit   int64
	window  time.Duration
	logger  zerolog.Logger
}

func NewLimiter(counter Counter, route string, limit int, window time.Duration, logger zerolog.Logger) *Limiter {
	return &Limiter{
		counter: counter,
		route:   route,
		limit:   int64(limit),
		window:  window,
		logger:  logger.With().Str("component", "rate_limiter").Str("route", route).Logger(),
	}
}

// Middleware limits authenticated callers by email. It must run after
// auth.RequireAuth. A counter failure lets the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.limit <= 0 || l.window <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key, ok := auth.EmailFromContext(r.Context())
		if !ok {
			key = r.RemoteAddr
		}

		count, err := l.counter.Hit(r.Context(), l.route+":"+key, l.window)
		if err != nil {
			l.logger.Warn().Err(err).Msg("rate limit counter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		if count > l.limit {
			metrics.RateLimited.WithLabelValues(l.route).Inc()
			httperrors.RespondTooManyRequests(w, "Too many requests. Please try again later.", int(l.window.Seconds()))
			return
		}

		next.ServeHTTP(w, r)
	})
}
