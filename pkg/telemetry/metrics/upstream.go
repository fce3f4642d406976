package metrics

import (
	"time"

	"awqat-hq/gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the prayer-times provider and its
// authentication endpoints.
//
// Metrics:
//   - awqat_gateway_upstream_requests_total: Upstream responses by endpoint and status
//   - awqat_gateway_upstream_latency_seconds: Upstream call latency
//   - awqat_gateway_upstream_errors_total: Upstream failures by endpoint and kind
//   - awqat_gateway_auth_operations_total: Login/refresh calls by outcome
//   - awqat_gateway_auth_duration_seconds: Login/refresh latency
type UpstreamMetrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	authOps      *prometheus.CounterVec
	authDuration *prometheus.HistogramVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream responses by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream call latency in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"endpoint"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream failures by kind (status, transport, decode, auth)",
			},
			[]string{"endpoint", "kind"},
		),

		authOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "auth_operations_total",
				Help:      "Total number of login and refresh calls by outcome",
			},
			[]string{"op", "outcome"},
		),

		authDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "auth_duration_seconds",
				Help:      "Login and refresh latency in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"op"},
		),
	}

	registry.MustRegister(
		um.requests,
		um.latency,
		um.errors,
		um.authOps,
		um.authDuration,
	)

	return um
}

// RecordRequest records one upstream response.
func (um *UpstreamMetrics) RecordRequest(endpoint, status string, duration time.Duration) {
	um.requests.WithLabelValues(endpoint, status).Inc()
	um.latency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordError records one upstream failure.
func (um *UpstreamMetrics) RecordError(endpoint, kind string) {
	um.errors.WithLabelValues(endpoint, kind).Inc()
}

// RecordAuth records one login or refresh call.
func (um *UpstreamMetrics) RecordAuth(op, outcome string, duration time.Duration) {
	um.authOps.WithLabelValues(op, outcome).Inc()
	um.authDuration.WithLabelValues(op).Observe(duration.Seconds())
}
