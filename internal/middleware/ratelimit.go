package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	count     int
	expiresAt time.Time
}

// InMemoryRateLimiter counts calls per (identifier, action) inside a fixed
// window. The window resets when its entry expires; there is no rolling log of
// timestamps. State is process-local and lost on restart.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

func NewInMemoryRateLimiter() *InMemoryRateLimiter {
	r := &InMemoryRateLimiter{windows: make(map[string]*window)}
	go r.cleanup()
	return r
}

// Allow records one call for (identifier, action) and reports whether it is
// within max calls per win; the (max+1)-th call inside a window is limited.
func (r *InMemoryRateLimiter) Allow(identifier, action string, max int, win time.Duration) bool {
	key := action + ":" + identifier
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[key]
	if !ok || now.After(w.expiresAt) {
		r.windows[key] = &window{count: 1, expiresAt: now.Add(win)}
		return true
	}
	if w.count >= max {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for (identifier, action), e.g. after a successful login.
func (r *InMemoryRateLimiter) Reset(identifier, action string) {
	key := action + ":" + identifier
	r.mu.Lock()
	delete(r.windows, key)
	r.mu.Unlock()
}

func (r *InMemoryRateLimiter) cleanup() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		now := time.Now()
		r.mu.Lock()
		for k, w := range r.windows {
			if now.After(w.expiresAt) {
				delete(r.windows, k)
			}
		}
		r.mu.Unlock()
	}
}

// RateLimit returns a middleware limiting by client IP for the given action.
func RateLimit(limiter *InMemoryRateLimiter, action string, max int, win time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP(), action, max, win) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
