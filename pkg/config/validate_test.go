package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Upstream.Email = "ops@example.com"
	cfg.Upstream.Password = "hunter2"
	cfg.Server.AllowedOrigin = "https://app.example"
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "port out of range",
			mutate:    func(cfg *Config) { cfg.Server.Port = 70000 },
			wantField: "server.port",
		},
		{
			name:      "origin with path",
			mutate:    func(cfg *Config) { cfg.Server.AllowedOrigin = "https://app.example/" },
			wantField: "server.allowed_origin",
		},
		{
			name:      "origin without scheme",
			mutate:    func(cfg *Config) { cfg.Server.AllowedOrigin = "app.example" },
			wantField: "server.allowed_origin",
		},
		{
			name:      "base url ftp",
			mutate:    func(cfg *Config) { cfg.Upstream.BaseURL = "ftp://upstream.test" },
			wantField: "upstream.base_url",
		},
		{
			name:      "unknown backend",
			mutate:    func(cfg *Config) { cfg.Cache.Backend = "memcached" },
			wantField: "cache.backend",
		},
		{
			name:      "unknown timezone",
			mutate:    func(cfg *Config) { cfg.Cache.Timezone = "Mars/Olympus" },
			wantField: "cache.timezone",
		},
		{
			name:      "bad log level",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "metrics path",
			mutate:    func(cfg *Config) { cfg.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name:      "bad cron",
			mutate:    func(cfg *Config) { cfg.Session.KeepaliveSchedule = "every minute" },
			wantField: "session.keepalive_schedule",
		},
		{
			name:      "tracing without endpoint",
			mutate:    func(cfg *Config) { cfg.Telemetry.Tracing.Enabled = true },
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name: "tracing with endpoint",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Tracing.Enabled = true
				cfg.Telemetry.Tracing.Endpoint = "localhost:4317"
			},
		},
		{
			name:      "sample ratio above one",
			mutate:    func(cfg *Config) { cfg.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name:      "negative margin",
			mutate:    func(cfg *Config) { cfg.Session.ExpiryMargin = -1 },
			wantField: "session.expiry_margin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, fe := range ve.Errors {
				if fe.Field == tt.wantField {
					return
				}
			}
			t.Errorf("expected error on %s, got %v", tt.wantField, ve.Errors)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") || !strings.Contains(got, "b: worse") {
		t.Errorf("unexpected message %q", got)
	}
}
