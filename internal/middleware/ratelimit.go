package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/types"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per client IP token bucket.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
// Non-positive values select 5 and 10.
func NewRateLimiter(rps, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow takes a token for key.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// Cleanup forgets clients idle for longer than idle.
func (l *RateLimiter) Cleanup(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			n++
		}
	}
	return n
}

// Handler limits requests by client IP.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.Allow(c.IP()) {
			return c.Next()
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(1))
		return &types.CustomError{
			Code:    fiber.StatusTooManyRequests,
			Message: "too many requests",
			Type:    "rate_limit",
		}
	}
}
