package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"klikpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped by Cleanup.
type IPRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	message  string
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig tunes an IPRateLimiter. A non-positive rate disables
// limiting.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	EntryTTL          time.Duration
	Message           string
}

func NewIPRateLimiter(cfg RateLimiterConfig) *IPRateLimiter {
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 10 * time.Minute
	}
	if cfg.Message == "" {
		cfg.Message = "too many requests, try again shortly"
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &IPRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     limit,
		burst:    cfg.Burst,
		ttl:      cfg.EntryTTL,
		message:  cfg.Message,
		now:      time.Now,
	}
}

// NewLoginRateLimiter allows 20 login attempts per minute per IP.
func NewLoginRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 20.0 / 60.0,
		Burst:             20,
		Message:           "too many login attempts, try again in a minute",
	})
}

func (rl *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	now := rl.now()

	rl.mu.RLock()
	entry, ok := rl.limiters[ip]
	rl.mu.RUnlock()
	if ok {
		rl.mu.Lock()
		entry.lastSeen = now
		rl.mu.Unlock()
		return entry.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if entry, ok := rl.limiters[ip]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst), lastSeen: now}
	rl.limiters[ip] = entry
	return entry.limiter
}

// Cleanup removes buckets idle for longer than the entry TTL and returns how
// many were removed.
func (rl *IPRateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-rl.ttl)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	purged := 0
	for ip, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
			purged++
		}
	}
	return purged
}

// StartCleanup runs Cleanup every interval until ctx is cancelled.
func (rl *IPRateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := rl.Cleanup(); n > 0 {
					log.Debug().Int("purged", n).Int("remaining", rl.Size()).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}

func (rl *IPRateLimiter) Size() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.Itoa(rl.burst)
	return func(c *gin.Context) {
		limiter := rl.limiterFor(c.ClientIP())
		c.Header("X-RateLimit-Limit", limit)
		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(rl.message))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}
