package middleware

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"awqat-hq/gateway/pkg/proxy/types"
	"awqat-hq/gateway/pkg/ratelimit"
)

// RateLimitConfig configures RateLimitMiddleware. A nil Limiter or
// InFlight disables that check.
type RateLimitConfig struct {
	// Limiter throttles each client address.
	Limiter *ratelimit.Limiter

	// InFlight caps simultaneous requests across all clients.
	InFlight *ratelimit.ConcurrentLimiter

	// Exempt lists paths that are never throttled, such as probes.
	Exempt []string
}

// RateLimitMiddleware rejects a client over its rate with 429 and a
// Retry-After header, and any request beyond the in-flight cap with 503.
// Clients are keyed by the remote address host.
func RateLimitMiddleware(config RateLimitConfig) func(http.Handler) http.Handler {
	exempt := make(map[string]bool, len(config.Exempt))
	for _, p := range config.Exempt {
		exempt[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if config.Limiter != nil {
				res := config.Limiter.Check(clientKey(r))
				if !res.Allowed {
					w.Header().Set("Retry-After", retryAfterSeconds(res.RetryAfter))
					writeError(w, http.StatusTooManyRequests, types.NewRateLimitError())
					return
				}
			}

			if config.InFlight != nil {
				if !config.InFlight.Acquire() {
					w.Header().Set("Retry-After", "1")
					writeError(w, http.StatusServiceUnavailable, types.NewBusyError())
					return
				}
				defer config.InFlight.Release()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RunLimiterSweeper drops idle client buckets every interval until ctx is
// cancelled.
func RunLimiterSweeper(ctx context.Context, limiter *ratelimit.Limiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func writeError(w http.ResponseWriter, status int, body *types.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
