package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

const (
	visitorIdleAfter = 3 * time.Minute
	pruneInterval    = time.Minute
)

type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// limiter keeps one token count per client key behind a single mutex. Idle
// visitors are pruned on the way through so the map stays bounded by the
// active client set.
type limiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      float64
	burst     float64
	lastPrune time.Time
	now       func() time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		visitors: make(map[string]*visitor),
		rate:     cfg.RequestsPerSecond,
		burst:    float64(cfg.BurstSize),
		now:      time.Now,
	}
}

// allow refills and spends one token for key. When the bucket is empty it
// returns false plus the whole seconds until a token becomes available.
func (l *limiter) allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{tokens: l.burst, lastSeen: now}
		l.visitors[key] = v
	} else {
		v.tokens += now.Sub(v.lastSeen).Seconds() * l.rate
		if v.tokens > l.burst {
			v.tokens = l.burst
		}
		v.lastSeen = now
	}

	if now.Sub(l.lastPrune) > pruneInterval {
		for k, other := range l.visitors {
			if k != key && now.Sub(other.lastSeen) > visitorIdleAfter {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	if v.tokens >= 1 {
		v.tokens--
		return true, 0
	}
	if l.rate <= 0 {
		return false, 1
	}
	return false, int((1-v.tokens)/l.rate) + 1
}

// RateLimit returns a per-client-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	l := newLimiter(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := l.allow(c.RealIP())
			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
