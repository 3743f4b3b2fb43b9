package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tht-digital/theo-relay/config"
	"github.com/tht-digital/theo-relay/errors"
	"github.com/tht-digital/theo-relay/server/metrics"
	"golang.org/x/time/rate"
)

type rateLimiters struct {
	visitors map[string]*rate.Limiter
	mu       sync.RWMutex
}

var limiters = &rateLimiters{
	visitors: make(map[string]*rate.Limiter),
}

func (l *rateLimiters) GetOrCreate(ip string, create func() *rate.Limiter) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.visitors[ip]
	if !exists {
		limiter = create()
		l.visitors[ip] = limiter
	}

	return limiter
}

// RateLimit middleware implements rate limiting per client IP. It only
// makes sense on the webhook endpoint when the relay is exposed beyond the
// messaging platform; it is disabled by default in configuration.
func RateLimit(m *metrics.Metrics, cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if idx := strings.LastIndex(ip, ":"); idx != -1 {
				ip = ip[:idx] // Strip port number if present
			}

			limiter := limiters.GetOrCreate(ip, func() *rate.Limiter {
				return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
			})

			if !limiter.Allow() {
				m.RateLimitHits.WithLabelValues(ip).Inc()

				retryAfter := int(time.Minute.Seconds()) / perMinute
				if retryAfter < 1 {
					retryAfter = 1
				}

				errors.WriteError(w, errors.NewRateLimitError(
					GetRequestID(r.Context()),
					retryAfter,
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResetRateLimiters resets all rate limiters. Only used for testing.
func ResetRateLimiters() {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()
	limiters.visitors = make(map[string]*rate.Limiter)
}
