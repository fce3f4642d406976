// Package tracing wires OpenTelemetry into the gateway.
//
// New installs an OTLP/gRPC exporter behind a parent-based sampler and
// registers W3C trace-context propagation. With tracing disabled the global
// no-op provider is left in place, so the helpers below are always safe to
// call.
//
// Spans produced by the gateway:
//
//   - one server span per inbound request (Middleware), named after the
//     matched route pattern such as "GET /api/awqat/daily"
//   - one client span per upstream data call, with traceparent injected
//     into the outgoing request
//   - one span per session login or refresh
//
// Configuration:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.25
package tracing
