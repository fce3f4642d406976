package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"awqat-hq/gateway/pkg/proxy/types"
)

// CORSConfig contains configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigin is the single browser origin allowed to call the gateway.
	AllowedOrigin string

	// AllowedMethods is sent in preflight responses.
	AllowedMethods []string

	// ExposedHeaders lists response headers readable by the browser.
	ExposedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds. Zero omits it.
	MaxAge int
}

// DefaultCORSConfig returns the configuration for allowedOrigin.
func DefaultCORSConfig(allowedOrigin string) *CORSConfig {
	return &CORSConfig{
		AllowedOrigin:  allowedOrigin,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		ExposedHeaders: []string{CacheHeader, RequestIDHeader},
		MaxAge:         600,
	}
}

// CacheHeader reports whether a cached route was served from the cache.
const CacheHeader = "X-Cache"

// CORSMiddleware enforces the single-origin policy.
//
// Requests without an Origin header (the mobile client, curl, health probes)
// pass through untouched. A request whose Origin equals the allowed origin
// gets Access-Control-Allow-Origin, and its preflight is answered with 204.
// Any other origin is refused with 403 before a route runs.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			if origin != config.AllowedOrigin {
				writeError(w, http.StatusForbidden, types.NewCORSError())
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if len(config.ExposedHeaders) > 0 {
				w.Header().Set("Access-Control-Expose-Headers", strings.Join(config.ExposedHeaders, ", "))
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if len(config.AllowedMethods) > 0 {
					w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				}
				// Reflect the requested headers.
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
					w.Header().Add("Vary", "Access-Control-Request-Headers")
				}
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
				w.Header().Set("Content-Length", "0")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
