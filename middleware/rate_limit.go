package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mattalagalams/nsp-agent/pkg/logger"
)

// RateLimiter counts requests per client IP over a fixed window. Each client
// gets its own window so one chatty IP resetting does not reset everyone.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	rate    int
	window  time.Duration
}

type clientWindow struct {
	count   int
	started time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientWindow),
		rate:    rate,
		window:  window,
	}
}

// allow records one request for the client and reports whether it fits in
// the current window.
func (l *RateLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cw, ok := l.clients[clientIP]
	if !ok || now.Sub(cw.started) > l.window {
		l.clients[clientIP] = &clientWindow{count: 1, started: now}
		return true
	}

	if cw.count >= l.rate {
		return false
	}
	cw.count++
	return true
}

// RateLimit rejects requests beyond rate per window for each client IP.
// Proposal generation holds a runtime job for minutes per request, so the
// limit mainly protects the agent runtime quota, not the HTTP server.
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.allow(clientIP) {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client_ip", clientIP)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
