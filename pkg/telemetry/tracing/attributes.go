package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. HTTP keys follow the OpenTelemetry semantic conventions;
// gateway-specific keys live under "awqat.".
const (
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"

	AttrCacheKey = "awqat.cache.key"
	AttrCacheHit = "awqat.cache.hit"

	AttrUpstreamEndpoint = "awqat.upstream.endpoint"
	AttrUpstreamRetry    = "awqat.upstream.retry"

	AttrAuthOperation = "awqat.auth.operation"
)

// SetCacheAttributes records the cache outcome on the span.
func SetCacheAttributes(span trace.Span, key string, hit bool) {
	span.SetAttributes(
		attribute.String(AttrCacheKey, key),
		attribute.Bool(AttrCacheHit, hit),
	)
}

// SetUpstreamAttributes records the upstream endpoint and response status.
// A zero status is omitted.
func SetUpstreamAttributes(span trace.Span, endpoint string, status int) {
	span.SetAttributes(attribute.String(AttrUpstreamEndpoint, endpoint))
	if status != 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
	}
}
