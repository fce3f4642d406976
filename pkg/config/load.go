package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by the gateway. The first block matches
// the variables the mobile backend has always been deployed with.
const (
	EnvBaseURL         = "AWQAT_BASE_URL"
	EnvEmail           = "AWQAT_EMAIL"
	EnvPassword        = "AWQAT_PASSWORD"
	EnvPasswordFile    = "AWQAT_PASSWORD_FILE"
	EnvAllowedOrigin   = "ALLOWED_ORIGIN"
	EnvDailyTTLMin     = "DAILY_TTL_MIN"
	EnvMonthlyTTLHours = "MONTHLY_TTL_HOURS"
	EnvPort            = "PORT"

	EnvLookupTTLHours    = "LOOKUP_TTL_HOURS"
	EnvCacheTimezone     = "CACHE_TIMEZONE"
	EnvCacheBackend      = "AWQAT_CACHE_BACKEND"
	EnvSQLitePath        = "AWQAT_CACHE_SQLITE_PATH"
	EnvRedisAddr         = "AWQAT_REDIS_ADDR"
	EnvRedisPassword     = "AWQAT_REDIS_PASSWORD"
	EnvUpstreamTimeout   = "AWQAT_UPSTREAM_TIMEOUT"
	EnvKeepaliveSchedule = "AWQAT_KEEPALIVE_SCHEDULE"
	EnvLogLevel          = "AWQAT_LOG_LEVEL"
	EnvLogFormat         = "AWQAT_LOG_FORMAT"
	EnvMetricsEnabled    = "AWQAT_METRICS_ENABLED"
)

// Load builds the runtime configuration. The file at path is optional;
// an empty path means configuration comes from the environment only.
//
// The loading sequence is:
// 1. Load YAML from file (if any)
// 2. Apply environment variable overrides
// 3. Apply default values
// 4. Validate final configuration
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		cfg, err = readFile(path)
		if err != nil {
			return nil, err
		}
	}

	envErrs := applyEnvOverrides(cfg, os.LookupEnv)
	envErrs = append(envErrs, resolveSecretFiles(cfg)...)

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		if ve, ok := err.(ValidationError); ok {
			ve.Errors = append(envErrs, ve.Errors...)
			return nil, ve
		}
		return nil, err
	}
	if len(envErrs) > 0 {
		return nil, ValidationError{Errors: envErrs}
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numeric values are reported rather than silently ignored.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) []FieldError {
	var errs []FieldError

	str := func(name string, dst *string) {
		if val, ok := lookup(name); ok && val != "" {
			*dst = val
		}
	}
	parseNum := func(name string) (float64, bool) {
		val, ok := lookup(name)
		if !ok || val == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("must be a number, got %q", val)})
			return 0, false
		}
		return f, true
	}
	num := func(name string, dst *float64) {
		if f, ok := parseNum(name); ok {
			*dst = f
		}
	}
	// Explicit TTLs, including 0, are kept so clamping applies to them.
	ttl := func(name string, dst **float64) {
		if f, ok := parseNum(name); ok {
			*dst = &f
		}
	}

	// Upstream
	str(EnvBaseURL, &cfg.Upstream.BaseURL)
	str(EnvEmail, &cfg.Upstream.Email)
	str(EnvPassword, &cfg.Upstream.Password)
	str(EnvPasswordFile, &cfg.Upstream.PasswordFile)
	if val, ok := lookup(EnvUpstreamTimeout); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		} else {
			errs = append(errs, FieldError{Field: EnvUpstreamTimeout, Message: fmt.Sprintf("must be a duration, got %q", val)})
		}
	}

	// Server
	str(EnvAllowedOrigin, &cfg.Server.AllowedOrigin)
	if val, ok := lookup(EnvPort); ok && val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = p
		} else {
			errs = append(errs, FieldError{Field: EnvPort, Message: fmt.Sprintf("must be an integer, got %q", val)})
		}
	}

	// Session
	str(EnvKeepaliveSchedule, &cfg.Session.KeepaliveSchedule)

	// Cache
	ttl(EnvDailyTTLMin, &cfg.Cache.DailyTTLMinutes)
	ttl(EnvMonthlyTTLHours, &cfg.Cache.MonthlyTTLHours)
	num(EnvLookupTTLHours, &cfg.Cache.LookupTTLHours)
	str(EnvCacheTimezone, &cfg.Cache.Timezone)
	str(EnvCacheBackend, &cfg.Cache.Backend)
	str(EnvSQLitePath, &cfg.Cache.SQLite.Path)
	str(EnvRedisAddr, &cfg.Cache.Redis.Addr)
	str(EnvRedisPassword, &cfg.Cache.Redis.Password)

	// Telemetry
	str(EnvLogLevel, &cfg.Telemetry.Logging.Level)
	str(EnvLogFormat, &cfg.Telemetry.Logging.Format)
	if val, ok := lookup(EnvMetricsEnabled); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		} else {
			errs = append(errs, FieldError{Field: EnvMetricsEnabled, Message: fmt.Sprintf("must be a boolean, got %q", val)})
		}
	}

	return errs
}
