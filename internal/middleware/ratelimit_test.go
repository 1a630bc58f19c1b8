package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNewIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)

	if limiter == nil {
		t.Fatal("Expected limiter to be created")
	}
	if limiter.rate != 10 {
		t.Errorf("Expected rate 10, got %v", limiter.rate)
	}
	if limiter.burst != 20 {
		t.Errorf("Expected burst 20, got %d", limiter.burst)
	}
}

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20)

	// Get limiter for first IP
	l1 := limiter.GetLimiter("192.168.1.1")
	if l1 == nil {
		t.Fatal("Expected limiter for IP")
	}

	// Get limiter for same IP - should be the same instance
	l2 := limiter.GetLimiter("192.168.1.1")
	if l1 != l2 {
		t.Error("Expected same limiter instance for same IP")
	}

	// Get limiter for different IP - should be different
	l3 := limiter.GetLimiter("192.168.1.2")
	if l1 == l3 {
		t.Error("Expected different limiter instance for different IP")
	}
}

func TestIPRateLimiter_Allow(t *testing.T) {
	// Very low rate for testing
	limiter := NewIPRateLimiter(1, 2) // 1 per second, burst of 2

	ip := "192.168.1.1"

	// First two should be allowed (burst)
	if !limiter.Allow(ip) {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow(ip) {
		t.Error("Second request should be allowed (within burst)")
	}

	// Third should be denied (burst exhausted)
	if limiter.Allow(ip) {
		t.Error("Third request should be denied (burst exhausted)")
	}
}

func TestIPRateLimiter_AllowAfterWait(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(10), 1) // 10 per second, burst of 1

	ip := "192.168.1.1"

	// First should be allowed
	if !limiter.Allow(ip) {
		t.Error("First request should be allowed")
	}

	// Immediate second should be denied
	if limiter.Allow(ip) {
		t.Error("Immediate second request should be denied")
	}

	// Wait for token refill
	time.Sleep(150 * time.Millisecond)

	// Now should be allowed again
	if !limiter.Allow(ip) {
		t.Error("Request after wait should be allowed")
	}
}

func TestIPRateLimiter_Concurrency(t *testing.T) {
	limiter := NewIPRateLimiter(100, 100)

	var wg sync.WaitGroup
	errors := make(chan error, 100)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ip := "192.168.1.1"
			limiter.Allow(ip)
		}(i)
	}

	wg.Wait()
	close(errors)

	// Should not have any errors (no race conditions)
	for err := range errors {
		t.Errorf("Concurrent error: %v", err)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// Very strict limiter for testing
	limiter := NewIPRateLimiter(1, 1)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rateLimited := RateLimitMiddleware(limiter)(handler)

	// First request - should pass
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	rateLimited.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("First request should be OK, got %d", w.Result().StatusCode)
	}

	// Second request - should be rate limited
	w = httptest.NewRecorder()
	rateLimited.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("Second request should be rate limited, got %d", w.Result().StatusCode)
	}
}

func TestRateLimitFunc(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	rateLimited := RateLimitFunc(limiter, handler)

	// First request - should pass
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.2:12345"
	w := httptest.NewRecorder()
	rateLimited(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("First request should be OK, got %d", w.Result().StatusCode)
	}
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{"X-Forwarded-For", "1.2.3.4", "", "192.168.1.1:12345", "1.2.3.4"},
		{"first forwarded hop", "1.2.3.4, 10.0.0.1, 10.0.0.2", "", "192.168.1.1:12345", "1.2.3.4"},
		{"X-Real-IP", "", "5.6.7.8", "192.168.1.1:12345", "5.6.7.8"},
		{"RemoteAddr without port", "", "", "192.168.1.1:12345", "192.168.1.1"},
		{"RemoteAddr without port field", "", "", "192.168.1.1", "192.168.1.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			if ip := getIP(req); ip != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, ip)
			}
		})
	}
}

func TestIPRateLimiter_EvictIdle(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	defer limiter.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(10 * time.Minute)
	limiter.Allow("10.0.0.2")

	if evicted := limiter.evictIdle(); evicted != 1 {
		t.Errorf("Expected 1 idle limiter evicted, got %d", evicted)
	}
	if _, ok := limiter.limiters["10.0.0.2"]; !ok {
		t.Error("Expected the recent visitor to be kept")
	}
}

func TestRateLimitMiddleware_ResponseBody(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	defer limiter.Close()

	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/api/projects/x", nil)
	req.RemoteAddr = "192.168.1.9:1"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if !strings.Contains(w.Body.String(), "rate_limited") {
		t.Errorf("Unexpected body %s", w.Body.String())
	}
}
