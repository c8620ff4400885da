package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Auth endpoints allow a short burst, then one attempt per two seconds
// per client IP.
const (
	authRate  = rate.Limit(0.5)
	authBurst = 5
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter applies a per-IP token bucket to the routes it wraps
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	burst    int
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		r:        r,
		burst:    burst,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Prune idle entries so the map stays bounded
	for addr, v := range rl.visitors {
		if now.Sub(v.lastSeen) > 10*time.Minute {
			delete(rl.visitors, addr)
		}
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.Allow()
}

func (rl *rateLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rl.allow(c.RealIP()) {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"detail": "Too many requests"})
		}
		return next(c)
	}
}
