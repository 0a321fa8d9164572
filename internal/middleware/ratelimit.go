package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/response"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller, keyed by user id or client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// sweepsPerIdle bounds how often the visitor map is scanned: a few times per idle window.
const sweepsPerIdle = 4

// NewRateLimiter builds a limiter. A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:      10 * time.Minute,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// Handler rejects callers over their budget with 429.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.limit <= 0 {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if session, ok := CurrentSession(c); ok {
			key = "user:" + session.UserID
		}
		if !l.allow(key) {
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "Too many requests, slow down."))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)
	if now.Sub(l.lastSweep) >= l.idle/sweepsPerIdle {
		l.sweep(now)
	}
	return allowed
}

// sweep drops buckets idle for longer than l.idle. Caller holds l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, key)
		}
	}
}
