package config

import (
	"fmt"
	"os"
	"strings"
)

// resolveSecretFiles fills secrets that are configured by file path. A value
// set directly always wins over the file.
func resolveSecretFiles(cfg *Config) []FieldError {
	if cfg.Upstream.Password != "" || cfg.Upstream.PasswordFile == "" {
		return nil
	}

	value, err := readSecretFile(cfg.Upstream.PasswordFile)
	if err != nil {
		return []FieldError{{Field: "upstream.password_file", Message: err.Error()}}
	}
	cfg.Upstream.Password = value
	return nil
}

// readSecretFile returns the trimmed contents of a secret file. The file must
// be regular (symlinks are followed, as with mounted secrets) and must not
// be writable by group or others.
func readSecretFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("secret file not found: %s", path)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", path)
	}

	if mode := info.Mode().Perm(); mode&0o022 != 0 {
		return "", fmt.Errorf("insecure permissions on %s: %o (must not be group or world writable)", path, mode)
	}

	// #nosec G304 - path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("secret file is empty: %s", path)
	}
	return value, nil
}
