// Package ratelimit provides the limiters used to protect the gateway's
// single upstream account from runaway clients.
//
// Limiter keeps a token bucket per client key:
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerSecond: 5, Burst: 20})
//	if res := limiter.Check(clientIP); !res.Allowed {
//	    // reject, retry after res.RetryAfter
//	}
//
// ConcurrentLimiter caps the number of requests in flight at once:
//
//	inflight := ratelimit.NewConcurrentLimiter(64)
//	if inflight.Acquire() {
//	    defer inflight.Release()
//	    // Process request
//	}
//
// All limiters are safe for concurrent use.
package ratelimit
