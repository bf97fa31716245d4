package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRateLimitRouter(rate int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(rate, window))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func doRequest(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitRejectsAboveRate(t *testing.T) {
	router := newRateLimitRouter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if w := doRequest(router, "192.168.1.1"); w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	if w := doRequest(router, "192.168.1.1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 past the rate, got %d", w.Code)
	}
}

func TestRateLimitPerClientWindows(t *testing.T) {
	router := newRateLimitRouter(2, time.Minute)

	doRequest(router, "10.0.0.1")
	doRequest(router, "10.0.0.1")
	if w := doRequest(router, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected first client limited, got %d", w.Code)
	}

	// A different client has its own window
	if w := doRequest(router, "10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("Expected second client unaffected, got %d", w.Code)
	}
}

func TestRateLimitWindowExpiry(t *testing.T) {
	router := newRateLimitRouter(1, 30*time.Millisecond)

	if w := doRequest(router, "10.0.0.3"); w.Code != http.StatusOK {
		t.Fatalf("Expected first request allowed, got %d", w.Code)
	}
	if w := doRequest(router, "10.0.0.3"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected second request limited, got %d", w.Code)
	}

	time.Sleep(40 * time.Millisecond)

	if w := doRequest(router, "10.0.0.3"); w.Code != http.StatusOK {
		t.Errorf("Expected request allowed after window expiry, got %d", w.Code)
	}
}
