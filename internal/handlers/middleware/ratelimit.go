package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type limiterLogger interface {
	Warn(msg string, args ...any)
}

// RateLimitMiddleware throttles requests per client IP.
// Limiter errors fail open.
func RateLimitMiddleware(lim Limiter, l limiterLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := lim.Allow(r.Context(), clientIP(r))
			if err != nil {
				l.Warn("rate limiter failed, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				render.ServiceError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
