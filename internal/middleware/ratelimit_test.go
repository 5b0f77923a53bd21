package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestAllowLimitsAfterMax(t *testing.T) {
	limiter := NewInMemoryRateLimiter()

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Allow("1.2.3.4", "login", 5, time.Minute), "call %d should pass", i+1)
	}
	require.False(t, limiter.Allow("1.2.3.4", "login", 5, time.Minute), "sixth call should be limited")
}

func TestAllowWindowExpiry(t *testing.T) {
	limiter := NewInMemoryRateLimiter()

	require.True(t, limiter.Allow("1.2.3.4", "login", 1, 10*time.Millisecond))
	require.False(t, limiter.Allow("1.2.3.4", "login", 1, 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)
	require.True(t, limiter.Allow("1.2.3.4", "login", 1, 10*time.Millisecond))
}

func TestAllowIsolatesActionsAndIdentifiers(t *testing.T) {
	limiter := NewInMemoryRateLimiter()

	require.True(t, limiter.Allow("1.2.3.4", "login", 1, time.Minute))
	require.False(t, limiter.Allow("1.2.3.4", "login", 1, time.Minute))

	// Different action, same identifier: separate window.
	require.True(t, limiter.Allow("1.2.3.4", "webhook", 1, time.Minute))
	// Different identifier, same action: separate window.
	require.True(t, limiter.Allow("5.6.7.8", "login", 1, time.Minute))
}

func TestResetClearsWindow(t *testing.T) {
	limiter := NewInMemoryRateLimiter()

	require.True(t, limiter.Allow("1.2.3.4", "login", 1, time.Minute))
	require.False(t, limiter.Allow("1.2.3.4", "login", 1, time.Minute))

	limiter.Reset("1.2.3.4", "login")
	require.True(t, limiter.Allow("1.2.3.4", "login", 1, time.Minute))
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewInMemoryRateLimiter()

	r := gin.New()
	r.GET("/ping", RateLimit(limiter, "ping", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, do())
	require.Equal(t, http.StatusOK, do())
	require.Equal(t, http.StatusTooManyRequests, do())
}
