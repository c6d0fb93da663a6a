package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Suhaibinator/SRegistrar/pkg/httperror"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Rate limit key strategies
const (
	StrategyIP     = "ip"
	StrategyHeader = "header"
	StrategyCustom = "custom"
)

// ErrNoRateLimitKey is returned by key extraction when a request carries no key
var ErrNoRateLimitKey = errors.New("no rate limit key")

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Unique identifier for this rate limit bucket.
	// Routes sharing a BucketName share the same limit.
	BucketName string `yaml:"bucket" validate:"required"`

	// Maximum number of requests allowed in the time window
	Limit int `yaml:"limit" validate:"gt=0"`

	// Time window for the rate limit (e.g., 1m, 1h)
	Window time.Duration `yaml:"window" validate:"gt=0"`

	// Strategy for identifying clients: "ip" (default), "header" or "custom"
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=ip header custom"`

	// Header holds the client key when Strategy is "header"
	Header string `yaml:"header" validate:"required_if=Strategy header"`

	// Pace smooths admitted requests to Limit/Window with a leaky bucket
	// instead of letting a whole window through at once
	Pace bool `yaml:"pace"`

	// Custom key extractor function (used when Strategy is "custom")
	KeyExtractor func(*http.Request) (string, error) `yaml:"-"`
}

// RateLimiter defines the interface for rate limiting algorithms
type RateLimiter interface {
	// Allow reports whether a request is allowed for key, the number of
	// remaining requests in the window and the time until the window resets
	Allow(key string, limit int, window time.Duration) (bool, int, time.Duration)
}

type window struct {
	start time.Time
	count int
}

// UberRateLimiter implements RateLimiter with fixed window counters. Wait
// paces admitted requests with Uber's leaky bucket ratelimit library.
type UberRateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limiters sync.Map // map[string]ratelimit.Limiter
	now      func() time.Time
}

// NewUberRateLimiter creates a new rate limiter
func NewUberRateLimiter() *UberRateLimiter {
	return &UberRateLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow checks if a request is allowed based on the key and rate limit config
func (u *UberRateLimiter) Allow(key string, limit int, period time.Duration) (bool, int, time.Duration) {
	if period <= 0 {
		period = time.Second
	}
	if limit <= 0 {
		limit = 1
	}

	now := u.now()

	u.mu.Lock()
	defer u.mu.Unlock()

	win, ok := u.windows[key]
	if !ok || now.Sub(win.start) >= period {
		win = &window{start: now}
		u.windows[key] = win
	}

	reset := period - now.Sub(win.start)
	if win.count >= limit {
		return false, 0, reset
	}
	win.count++
	return true, limit - win.count, reset
}

// Wait blocks until the leaky bucket for key admits another request
func (u *UberRateLimiter) Wait(key string, limit int, period time.Duration) {
	if period <= 0 {
		period = time.Second
	}
	if limit <= 0 {
		limit = 1
	}
	u.limiter(key, limit, period).Take()
}

// limiter gets or creates a leaky bucket for the given key and rate
func (u *UberRateLimiter) limiter(key string, limit int, period time.Duration) ratelimit.Limiter {
	if l, ok := u.limiters.Load(key); ok {
		return l.(ratelimit.Limiter)
	}
	l, _ := u.limiters.LoadOrStore(key, ratelimit.New(limit, ratelimit.Per(period)))
	return l.(ratelimit.Limiter)
}

// waiter is implemented by limiters that can pace requests
type waiter interface {
	Wait(key string, limit int, period time.Duration)
}

func rateLimitKey(r *http.Request, config *RateLimitConfig) (string, error) {
	switch config.Strategy {
	case StrategyHeader:
		if v := r.Header.Get(config.Header); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("%w: header %q is empty", ErrNoRateLimitKey, config.Header)
	case StrategyCustom:
		if config.KeyExtractor != nil {
			return config.KeyExtractor(r)
		}
	}

	if ip := ClientIP(r); ip != "" {
		return ip, nil
	}
	return cleanIP(r.RemoteAddr), nil
}

// RateLimit creates a middleware that enforces rate limits.
// A nil config returns a nil middleware, which chains drop.
func RateLimit(config *RateLimitConfig, limiter RateLimiter, logger *zap.Logger) Middleware {
	if config == nil {
		return nil
	}
	if limiter == nil {
		limiter = NewUberRateLimiter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := rateLimitKey(r, config)
			if err != nil {
				logger.Warn("Failed to extract rate limit key",
					zap.Error(err),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				httperror.Fail(w, r, httperror.BadRequest(nil))
				return
			}

			bucketKey := config.BucketName + ":" + key
			allowed, remaining, reset := limiter.Allow(bucketKey, config.Limit, config.Window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(reset.Round(time.Second)/time.Second), 10))

				logger.Warn("Rate limit exceeded",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("bucket", config.BucketName),
					zap.String("key", key),
					zap.Int("limit", config.Limit),
				)

				httperror.Fail(w, r, httperror.TooManyRequests())
				return
			}

			if config.Pace {
				if p, ok := limiter.(waiter); ok {
					p.Wait(bucketKey, config.Limit, config.Window)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
