package cli

import (
	"errors"
	"fmt"
	"testing"

	"awqat-hq/gateway/pkg/config"
)

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Field:   "server.port",
		Message: "must be between 1 and 65535",
	}

	expected := "config error in server.port: must be between 1 and 65535"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestWrapConfigError(t *testing.T) {
	cause := config.ValidationError{Errors: []config.FieldError{{Field: "upstream.email", Message: "is required"}}}
	err := WrapConfigError(cause)

	var ve config.ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected wrapped ValidationError")
	}
	if err.Error() != "config error: "+cause.Error() {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("run", underlyingErr)

	expected := "command run failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config error", NewConfigError("output", "bad"), ExitConfig},
		{"validation error", fmt.Errorf("load: %w", config.ValidationError{}), ExitConfig},
		{"command error", NewCommandError("run", errors.New("listen failed")), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
