package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RateLimit struct {
	Limit  int
	Window time.Duration
}

func (r RateLimit) withDefaults() RateLimit {
	if r.Limit <= 0 {
		r.Limit = 100
	}
	if r.Window <= 0 {
		r.Window = time.Minute
	}
	return r
}

// RateLimiterMiddleware is a fixed-window counter per client IP kept in
// Redis. The window starts with the first request of a client. When Redis
// is unavailable requests pass through.
func RateLimiterMiddleware(rdb *redis.Client, rl RateLimit) gin.HandlerFunc {
	rl = rl.withDefaults()

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "rate_limit:" + c.ClientIP()

		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, rl.Window)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("[RATE] redis unavailable, limiter skipped")
			c.Next()
			return
		}

		count := incr.Val()
		reset := ttl.Val()
		if reset < 0 {
			reset = rl.Window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(rl.Limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

		if count > int64(rl.Limit) {
			retry := int(reset.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(retry))
			log.WithFields(log.Fields{"client_ip": c.ClientIP(), "count": count}).Info("[RATE] request throttled")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests. Slow down!",
			})
			return
		}

		c.Next()
	}
}
