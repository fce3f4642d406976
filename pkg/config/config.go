package config

import "time"

// Config is the root configuration structure for the Awqat gateway.
// It contains all configuration sections for the HTTP server, the upstream
// provider session, the response cache and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen port,
	// timeouts and the CORS allow-list.
	Server ServerConfig `yaml:"server"`

	// Upstream contains the upstream prayer-times provider location and
	// the credentials used to log in.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Session contains settings for the shared authentication session.
	Session SessionConfig `yaml:"session"`

	// Cache contains response cache settings including per-route TTLs
	// and the storage backend.
	Cache CacheConfig `yaml:"cache"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// Host is the interface to bind. Empty binds all interfaces.
	// Default: ""
	Host string `yaml:"host"`

	// Port is the TCP port to listen on.
	// Default: 3001
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must leave room for a login plus two upstream calls.
	// Default: 90s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigin is the single browser origin allowed to call the gateway.
	// Requests without an Origin header are always allowed.
	// Required.
	AllowedOrigin string `yaml:"allowed_origin" validate:"required"`

	// RateLimit throttles clients before they reach the upstream account.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig contains per-client request throttling. Zero values
// disable each limit.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate allowed per client address.
	// Default: 0 (disabled)
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`

	// Burst is the number of requests a client may make at once.
	// Default: twice RequestsPerSecond
	Burst int `yaml:"burst" validate:"gte=0"`

	// MaxInFlight caps simultaneous requests across all clients.
	// Default: 0 (disabled)
	MaxInFlight int `yaml:"max_in_flight" validate:"gte=0"`
}

// Enabled reports whether per-client throttling is on.
func (r RateLimitConfig) Enabled() bool {
	return r.RequestsPerSecond > 0
}

// UpstreamConfig contains the upstream provider location and credentials.
type UpstreamConfig struct {
	// BaseURL is the provider base URL without a trailing slash.
	// Default: "https://awqatsalah.diyanet.gov.tr"
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Email is the login identity. Required.
	Email string `yaml:"email" validate:"required"`

	// Password is the login secret. Required unless PasswordFile is set.
	Password string `yaml:"password" validate:"required"`

	// PasswordFile is read into Password when Password is empty, for
	// mounted secrets.
	PasswordFile string `yaml:"password_file"`

	// Timeout bounds a single upstream HTTP call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig contains settings for the shared upstream session.
type SessionConfig struct {
	// ExpiryMargin is how long before the access token's expiry a renewal
	// is started.
	// Default: 2m
	ExpiryMargin time.Duration `yaml:"expiry_margin"`

	// KeepaliveSchedule is an optional cron expression. When set, the
	// session is renewed on that schedule so user requests rarely wait on
	// a login. Empty disables it.
	KeepaliveSchedule string `yaml:"keepalive_schedule"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	// DailyTTLMinutes is the TTL for daily prayer times, clamped to [10, 30].
	// Nil means unset; an explicit 0 clamps to the minimum.
	// Default: 20
	DailyTTLMinutes *float64 `yaml:"daily_ttl_minutes"`

	// MonthlyTTLHours is the TTL for monthly prayer times, clamped to [6, 24].
	// Default: 12
	MonthlyTTLHours *float64 `yaml:"monthly_ttl_hours"`

	// LookupTTLHours enables caching of the countries, states and cities
	// lookups. Zero disables it.
	// Default: 0
	LookupTTLHours float64 `yaml:"lookup_ttl_hours" validate:"gte=0"`

	// Timezone is the IANA zone used to compute calendar-aligned keys.
	// Default: "UTC"
	Timezone string `yaml:"timezone" validate:"timezone"`

	// Backend selects the entry store: "memory", "sqlite" or "redis".
	// Default: "memory"
	Backend string `yaml:"backend" validate:"oneof=memory sqlite redis"`

	// SQLite configures the sqlite store.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis configures the redis store.
	Redis RedisConfig `yaml:"redis"`
}

// SQLiteConfig contains settings for the sqlite cache store.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/cache.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisConfig contains settings for the redis cache store.
type RedisConfig struct {
	// Addr is the redis host:port.
	// Default: "127.0.0.1:6379"
	Addr string `yaml:"addr"`

	// Password is the optional redis password.
	Password string `yaml:"password"`

	// DB is the redis database number.
	DB int `yaml:"db" validate:"gte=0"`

	// KeyPrefix namespaces gateway keys.
	// Default: "awqat:"
	KeyPrefix string `yaml:"key_prefix"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format" validate:"oneof=json text"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" validate:"startswith=/"`

	// Namespace is the metric name prefix.
	// Default: "awqat"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name component.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry tracing configuration. Spans are
// exported over OTLP/gRPC.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP collector host:port. Required when enabled.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint" validate:"required_if=Enabled true"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Sampler is the sampling strategy: "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler" validate:"oneof=always never ratio"`

	// SampleRatio is the fraction of new traces sampled by "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`

	// ServiceName is the service.name resource attribute.
	// Default: "awqat-gateway"
	ServiceName string `yaml:"service_name"`

	// ExportTimeout bounds a single export call.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`
}

// IsEnabled reports whether metrics are enabled.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ListenAddress returns the host:port the server binds.
func (s ServerConfig) ListenAddress() string {
	return joinHostPort(s.Host, s.Port)
}
