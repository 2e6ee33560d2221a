package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig tunes per-client token buckets.
type RateLimitConfig struct {
	// RPS is the steady-state requests per second per client IP.
	RPS int
	// Burst is the maximum burst size per client IP.
	Burst int
	// SweepInterval is how often idle client buckets are dropped. Zero
	// selects 5 minutes.
	SweepInterval time.Duration
	// IdleAfter is how long a client must be silent before its bucket is
	// dropped. Zero selects twice the sweep interval.
	IdleAfter time.Duration
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client-IP token bucket over the node API.
// Buckets for idle clients are reclaimed by Sweep, which the daemon runs
// alongside the HTTP server and stops on shutdown.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientBucket
}

// NewRateLimiter creates a RateLimiter with the given limits, filling in
// defaults for zero sweep and idle windows.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 2 * cfg.SweepInterval
	}
	return &RateLimiter{cfg: cfg, clients: make(map[string]*clientBucket)}
}

// Middleware returns the gin handler enforcing the limit. Requests over the
// limit are rejected with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.clients[ip] = b
	}
	b.lastSeen = time.Now()
	rl.mu.Unlock()
	return b.limiter.Allow()
}

// Sweep drops idle client buckets on every sweep interval until ctx is
// cancelled.
func (rl *RateLimiter) Sweep(ctx context.Context) {
	ticker := time.NewTicker(rl.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweepIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) sweepIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.cfg.IdleAfter {
			delete(rl.clients, ip)
		}
	}
}
