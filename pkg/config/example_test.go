package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// The shipped example must only use keys the loader understands.
func TestExampleConfig(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "examples", "gateway.yaml"))
	if err != nil {
		t.Fatalf("failed to read example config: %v", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		t.Fatalf("example config has unknown or malformed keys: %v", err)
	}

	if cfg.Server.RateLimit.Burst != 20 {
		t.Errorf("expected burst 20, got %d", cfg.Server.RateLimit.Burst)
	}
	if cfg.Session.ExpiryMargin != 2*time.Minute {
		t.Errorf("expected expiry margin 2m, got %v", cfg.Session.ExpiryMargin)
	}
	if cfg.Upstream.PasswordFile == "" {
		t.Error("expected example to reference a password file")
	}
}
