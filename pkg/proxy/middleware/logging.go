package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"awqat-hq/gateway/pkg/telemetry/tracing"
)

// RequestRecorder receives one event per completed request.
// *metrics.Collector satisfies it.
type RequestRecorder interface {
	RecordHTTPRequest(method, route, status string, duration time.Duration)
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// newResponseWriter creates a new response writer wrapper.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware logs every request once it completes and reports it to
// recorder, which may be nil.
//
// Log format (JSON):
//
//	{
//	  "time": "2024-03-01T08:00:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "request_id": "0b6c1f8e-...",
//	  "method": "GET",
//	  "path": "/api/awqat/daily",
//	  "route": "/api/awqat/daily",
//	  "status": 200,
//	  "cache": "HIT",
//	  "latency_ms": 3
//	}
//
// The route label is the matched mux pattern, so this middleware must hand
// the same *http.Request down to the mux.
func LoggingMiddleware(logger *slog.Logger, recorder RequestRecorder) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			latency := time.Since(start)
			route := RouteLabel(r)

			if recorder != nil {
				recorder.RecordHTTPRequest(r.Method, route, strconv.Itoa(rw.statusCode), latency)
			}

			logLevel := slog.LevelInfo
			if rw.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if rw.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", rw.statusCode,
				"latency_ms", latency.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			if cache := rw.Header().Get(CacheHeader); cache != "" {
				attrs = append(attrs, "cache", cache)
			}
			if traceID := tracing.TraceID(r.Context()); traceID != "" {
				attrs = append(attrs, "trace_id", traceID)
			}

			logger.Log(r.Context(), logLevel, "request completed", attrs...)
		})
	}
}

// RouteLabel returns the matched route path without its method, or
// "unmatched" when the mux found no route.
func RouteLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}
