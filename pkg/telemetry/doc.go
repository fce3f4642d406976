// Package telemetry groups the gateway's observability packages.
//
//   - logging: slog construction with secret redaction and request IDs
//   - metrics: Prometheus collectors for requests, cache and upstream calls
//   - tracing: OpenTelemetry spans for requests, upstream fetches and logins
//   - health: readiness checks served at /ready
package telemetry
