package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/Learnmade/livechallenge/internal/common"
	"github.com/Learnmade/livechallenge/internal/platform/metrics"
	"github.com/Learnmade/livechallenge/internal/platform/ratelimit"
)

// RateLimit admits requests through the given limiter. Authenticated callers
// are counted per user id, anonymous ones per client IP.
func RateLimit(limiter ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetUserIDFromContext(r.Context())
			if !ok {
				identity = clientIP(r)
			}

			result, err := limiter.Check(r.Context(), identity)
			if err != nil {
				// A broken limiter must not take the API down with it.
				log.Printf("rate limiter %q check failed, admitting request: %v", scope, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			if !result.Allowed {
				metrics.RateLimitDenials.WithLabelValues(scope).Inc()
				common.RespondRateLimited(w, result.ResetAt)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware has already rewritten RemoteAddr when the
	// request came through a proxy.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
