package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultPort            = 3001
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Upstream defaults
	DefaultUpstreamBaseURL = "https://awqatsalah.diyanet.gov.tr"
	DefaultUpstreamTimeout = 30 * time.Second

	// Session defaults
	DefaultSessionExpiryMargin = 2 * time.Minute

	// Cache defaults
	DefaultDailyTTLMinutes   = 20.0
	DefaultMonthlyTTLHours   = 12.0
	DefaultLookupTTLHours    = 0.0
	DefaultCacheTimezone     = "UTC"
	DefaultCacheBackend      = "memory"
	DefaultSQLitePath        = "data/cache.db"
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultRedisAddr         = "127.0.0.1:6379"
	DefaultRedisKeyPrefix    = "awqat:"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "awqat"
	DefaultMetricsSubsystem = "gateway"
	DefaultTracingSampler   = "ratio"
	DefaultTracingRatio     = 1.0
	DefaultTracingService   = "awqat-gateway"
	DefaultTracingTimeout   = 10 * time.Second
)

// TTL clamp bounds for the calendar-aligned routes.
const (
	MinDailyTTLMinutes = 10.0
	MaxDailyTTLMinutes = 30.0
	MinMonthlyTTLHours = 6.0
	MaxMonthlyTTLHours = 24.0
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Upstream defaults
	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}

	// Session defaults
	if cfg.Session.ExpiryMargin == 0 {
		cfg.Session.ExpiryMargin = DefaultSessionExpiryMargin
	}

	// Cache defaults
	if cfg.Cache.DailyTTLMinutes == nil {
		daily := DefaultDailyTTLMinutes
		cfg.Cache.DailyTTLMinutes = &daily
	}
	if cfg.Cache.MonthlyTTLHours == nil {
		monthly := DefaultMonthlyTTLHours
		cfg.Cache.MonthlyTTLHours = &monthly
	}
	if cfg.Cache.Timezone == "" {
		cfg.Cache.Timezone = DefaultCacheTimezone
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.SQLite.Path == "" {
		cfg.Cache.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Cache.SQLite.BusyTimeout == 0 {
		cfg.Cache.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 && cfg.Telemetry.Tracing.Sampler == DefaultTracingSampler {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.ExportTimeout == 0 {
		cfg.Telemetry.Tracing.ExportTimeout = DefaultTracingTimeout
	}
}

// DailyTTL returns the daily prayer-times TTL clamped to [10m, 30m].
func (c CacheConfig) DailyTTL() time.Duration {
	minutes := clamp(valueOr(c.DailyTTLMinutes, DefaultDailyTTLMinutes), MinDailyTTLMinutes, MaxDailyTTLMinutes)
	return time.Duration(minutes * float64(time.Minute))
}

// MonthlyTTL returns the monthly prayer-times TTL clamped to [6h, 24h].
func (c CacheConfig) MonthlyTTL() time.Duration {
	hours := clamp(valueOr(c.MonthlyTTLHours, DefaultMonthlyTTLHours), MinMonthlyTTLHours, MaxMonthlyTTLHours)
	return time.Duration(hours * float64(time.Hour))
}

// LookupTTL returns the TTL for place lookups. Zero means lookups are not cached.
func (c CacheConfig) LookupTTL() time.Duration {
	if c.LookupTTLHours <= 0 {
		return 0
	}
	return time.Duration(c.LookupTTLHours * float64(time.Hour))
}

// Location returns the time zone used for calendar-aligned cache keys.
// It falls back to UTC when the zone cannot be loaded.
func (c CacheConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
