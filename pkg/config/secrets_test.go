package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSecret(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write secret: %v", err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatalf("failed to chmod secret: %v", err)
	}
	return path
}

func TestReadSecretFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		perm    os.FileMode
		want    string
		wantErr string
	}{
		{name: "trimmed", content: "s3cret\n", perm: 0o600, want: "s3cret"},
		{name: "read only", content: "s3cret", perm: 0o400, want: "s3cret"},
		{name: "world readable", content: "s3cret", perm: 0o644, want: "s3cret"},
		{name: "group writable", content: "s3cret", perm: 0o620, wantErr: "insecure permissions"},
		{name: "empty", content: "  \n", perm: 0o600, wantErr: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSecretFile(writeSecret(t, tt.content, tt.perm))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, err := readSecretFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := readSecretFile(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}

func TestResolveSecretFiles(t *testing.T) {
	path := writeSecret(t, "from-file", 0o600)

	cfg := &Config{Upstream: UpstreamConfig{PasswordFile: path}}
	if errs := resolveSecretFiles(cfg); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if cfg.Upstream.Password != "from-file" {
		t.Errorf("expected password from file, got %q", cfg.Upstream.Password)
	}

	cfg = &Config{Upstream: UpstreamConfig{Password: "direct", PasswordFile: path}}
	resolveSecretFiles(cfg)
	if cfg.Upstream.Password != "direct" {
		t.Errorf("expected direct password to win, got %q", cfg.Upstream.Password)
	}

	cfg = &Config{Upstream: UpstreamConfig{PasswordFile: filepath.Join(t.TempDir(), "missing")}}
	errs := resolveSecretFiles(cfg)
	if len(errs) != 1 || errs[0].Field != "upstream.password_file" {
		t.Errorf("expected one upstream.password_file error, got %v", errs)
	}
}
