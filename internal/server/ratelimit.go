package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// rateLimiter is a fixed-window limiter keyed by route and client IP,
// counted with Redis INCR/EXPIRE. Without a client, or when Redis errors,
// requests are allowed.
type rateLimiter struct {
	client  *redis.Client
	max     int
	window  time.Duration
	metrics *metrics
	logger  *slog.Logger
}

func newRateLimiter(client *redis.Client, max int, window time.Duration, m *metrics, logger *slog.Logger) *rateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{client: client, max: max, window: window, metrics: m, logger: logger}
}

func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.client == nil || l.max <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		key := "rl:" + route + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.logger.WarnContext(ctx, "rate limiter unavailable", slog.String("error", err.Error()))
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			l.client.Expire(ctx, key, l.window)
		}

		if val > int64(l.max) {
			l.metrics.rlBlocked.WithLabelValues(route).Inc()
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		l.metrics.rlRequests.WithLabelValues(route).Inc()
		c.Next()
	}
}
