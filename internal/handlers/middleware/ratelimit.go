package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nkiryanov/contactbook/internal/handlers/render"
)

type limiter interface {
	Allow(ctx context.Context, key string) bool
	Window() time.Duration
}

// RateLimitMiddleware rejects requests over the per-client limit.
// Rejection is retryable, never fatal: 429 with a Retry-After hint.
func RateLimitMiddleware(l limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), clientKey(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.Window().Seconds())))
				render.ServiceError(w, "Too many requests, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Requests are counted per client address
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
