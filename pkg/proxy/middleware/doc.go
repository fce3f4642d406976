// Package middleware provides the HTTP middleware wrapped around the
// gateway's routes.
//
// The server applies them outermost first:
//
//	Recovery -> RequestID -> tracing -> Logging -> RateLimit -> CORS -> mux
//
// RecoveryMiddleware turns panics into a 500 JSON body. RequestIDMiddleware
// puts an ID in the context that every log record carries. LoggingMiddleware
// logs one line per request and feeds the HTTP metrics. RateLimitMiddleware
// optionally throttles each client address and caps requests in flight.
// CORSMiddleware
// enforces the single allowed origin and refuses other origins with 403
// before any route runs.
//
// Middleware between the tracing layer and the mux passes the request
// through unchanged, so the matched route pattern is visible to both the
// logging and tracing layers.
package middleware
