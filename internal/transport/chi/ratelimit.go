package chi

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/civiclens/civicsearch/internal/ratelimit"
)

// limiterExemptPaths bypass the caller limit (health, metrics).
var limiterExemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// RateLimitMiddleware gates every request through the caller limiter before
// the orchestrator runs: a denied request never reaches any adapter.
// Identity is the client IP (use chi's RealIP middleware upstream when
// behind a proxy).
func RateLimitMiddleware(limiter *ratelimit.Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := limiterExemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			d := limiter.Allow(r.Context(), clientIP(r), limit, window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the caller identity from the request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
