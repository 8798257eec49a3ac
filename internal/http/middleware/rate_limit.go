package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openshelf/libris/internal/http/response"
	"github.com/openshelf/libris/internal/repo/redisrepo"
	"github.com/openshelf/libris/pkg/logger"
)

// LoginRateLimit throttles credential-guessing by client IP. Limiter errors
// fail open: an unavailable Redis must not lock everyone out.
func LoginRateLimit(limiter redisrepo.RateLimitRepository, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "login:" + clientIP(r)

			allowed, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit check failed", "error", err)
			} else if !allowed {
				response.RateLimit(w, "Too many login attempts. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
