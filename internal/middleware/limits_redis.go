package middleware

import (
	"net/http"
	"strconv"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/ratelimit"
)

// RedisRateLimit uses a Redis-backed manager so replicas share one budget per
// client. If the manager is nil it no-ops and calls next. Redis errors fail
// open: a broken limiter must not take lookups down with it.
func RedisRateLimit(m *ratelimit.Manager, requestsPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, reset, err := m.CheckRate(r.Context(), clientID(r), requestsPerMinute)
			if err == nil && !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
