package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestUberRateLimiterWindow tests the fixed window counting of UberRateLimiter
func TestUberRateLimiterWindow(t *testing.T) {
	// Create a limiter with a controllable clock
	clock := time.Unix(1000, 0)
	limiter := NewUberRateLimiter()
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := limiter.Allow("k", 3, time.Minute)
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if remaining != 2-i {
			t.Errorf("Expected remaining %d, got %d", 2-i, remaining)
		}
	}

	// The fourth request in the window is denied
	allowed, remaining, reset := limiter.Allow("k", 3, time.Minute)
	if allowed {
		t.Error("Expected request 4 to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", remaining)
	}
	if reset != time.Minute {
		t.Errorf("Expected reset %v, got %v", time.Minute, reset)
	}

	// Other keys have their own window
	if allowed, _, _ := limiter.Allow("other", 3, time.Minute); !allowed {
		t.Error("Expected a different key to be allowed")
	}

	// A new window starts after the period
	clock = clock.Add(time.Minute)
	if allowed, _, _ := limiter.Allow("k", 3, time.Minute); !allowed {
		t.Error("Expected request to be allowed in the next window")
	}
}

// TestUberRateLimiterWait tests that Wait admits requests from the leaky bucket
func TestUberRateLimiterWait(t *testing.T) {
	limiter := NewUberRateLimiter()

	done := make(chan struct{})
	go func() {
		limiter.Wait("k", 1000, time.Second)
		limiter.Wait("k", 1000, time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Wait to return")
	}
}

// TestRateLimitNilConfig tests that a nil config yields no middleware
func TestRateLimitNilConfig(t *testing.T) {
	if mw := RateLimit(nil, nil, zap.NewNop()); mw != nil {
		t.Error("Expected nil middleware for nil config")
	}
}

// TestRateLimitMiddleware tests that requests over the limit get 429
func TestRateLimitMiddleware(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	config := &RateLimitConfig{
		BucketName: "items",
		Limit:      2,
		Window:     time.Minute,
		Strategy:   StrategyIP,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := RateLimit(config, NewUberRateLimiter(), logger)(handler)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/items", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		last = httptest.NewRecorder()
		wrapped.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Expected first two requests to succeed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected status code %d, got %d", http.StatusTooManyRequests, codes[2])
	}
	if last.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("Expected X-RateLimit-Limit 2, got %q", last.Header().Get("X-RateLimit-Limit"))
	}
	if last.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected X-RateLimit-Remaining 0, got %q", last.Header().Get("X-RateLimit-Remaining"))
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if logs.FilterMessage("Rate limit exceeded").Len() != 1 {
		t.Errorf("Expected 1 'Rate limit exceeded' log entry, got %d", logs.FilterMessage("Rate limit exceeded").Len())
	}

	// A different client is not limited
	req := httptest.NewRequest("GET", "/items", nil)
	req.RemoteAddr = "192.0.2.2:1234"
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d for another client, got %d", http.StatusOK, rr.Code)
	}
}

// TestRateLimitHeaderStrategy tests keying by header
func TestRateLimitHeaderStrategy(t *testing.T) {
	config := &RateLimitConfig{
		BucketName: "keys",
		Limit:      1,
		Window:     time.Minute,
		Strategy:   StrategyHeader,
		Header:     "X-API-Key",
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	wrapped := RateLimit(config, NewUberRateLimiter(), zap.NewNop())(handler)

	send := func(key string) int {
		req := httptest.NewRequest("GET", "/", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("a"); code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, code)
	}
	if code := send("a"); code != http.StatusTooManyRequests {
		t.Errorf("Expected status code %d, got %d", http.StatusTooManyRequests, code)
	}
	if code := send("b"); code != http.StatusOK {
		t.Errorf("Expected status code %d for another key, got %d", http.StatusOK, code)
	}

	// A missing header is rejected
	if code := send(""); code != http.StatusBadRequest {
		t.Errorf("Expected status code %d without key, got %d", http.StatusBadRequest, code)
	}
}

// TestRateLimitCustomStrategyError tests that key extractor errors reject the request
func TestRateLimitCustomStrategyError(t *testing.T) {
	config := &RateLimitConfig{
		BucketName: "custom",
		Limit:      1,
		Window:     time.Minute,
		Strategy:   StrategyCustom,
		KeyExtractor: func(r *http.Request) (string, error) {
			return "", errors.New("no tenant")
		},
	}

	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rr := httptest.NewRecorder()
	RateLimit(config, nil, nil)(handler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if called {
		t.Error("Expected handler not to be called")
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rr.Code)
	}
}
