package middlewares

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/portal/internal/observability"
	"github.com/geocoder89/portal/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

type RateLimiter struct {
	counter ratelimit.Counter
	limit   int64
	window  time.Duration
	scope   string
	log     *slog.Logger
	prom    *observability.Prom
}

func NewRateLimiter(counter ratelimit.Counter, scope string, limit int, window time.Duration, log *slog.Logger, prom *observability.Prom) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		scope:   scope,
		log:     log,
		prom:    prom,
	}
}

// RateLimiterMiddleware enforces the limit for a derived key. When the counter
// backend is unavailable the request is let through.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = KeyByIP(c)
		}

		count, resetIn, err := rl.counter.Hit(c.Request.Context(), rl.scope+":"+key, rl.window)
		if err != nil {
			rl.log.WarnContext(c.Request.Context(), "rate limiter unavailable", "scope", rl.scope, "err", err)
			c.Next()
			return
		}

		if count > rl.limit {
			retryAfter := int(math.Ceil(resetIn.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			if rl.scope == "login" {
				rl.prom.ObserveLogin("throttled")
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return "ip:" + clientIP(c)
}

func clientIP(c *gin.Context) string {
	// gin's ClientIP respects X-Forwarded-For / X-Real-IP only for trusted proxies.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
