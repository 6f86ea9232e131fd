package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// limiter keeps one token bucket per client IP. Stale visitors are swept
// on the request path once CleanupInterval has passed.
type limiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	cfg       RateLimiterConfig
	lastSweep time.Time
}

func (l *limiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(time.Now())

	v, exists := l.visitors[ip]
	if !exists {
		lim := rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)
		l.visitors[ip] = &visitor{lim, time.Now()}
		return lim
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// sweep must be called with mu held.
func (l *limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.CleanupInterval {
		return
	}

	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.cfg.TTL {
			delete(l.visitors, ip)
		}
	}

	l.lastSweep = now
}

func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst < config.RequestsPerSecond {
		config.Burst = config.RequestsPerSecond
	}

	l := &limiter{
		visitors:  make(map[string]*visitor),
		cfg:       config,
		lastSweep: time.Now(),
	}

	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
