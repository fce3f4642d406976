package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	data := map[string]string{"version": "1.0.0"}

	var text bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&text, "ok"); err != nil {
		t.Fatalf("text FormatTo failed: %v", err)
	}
	if text.String() != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", text.String())
	}

	var js bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&js, data); err != nil {
		t.Fatalf("json FormatTo failed: %v", err)
	}
	if !strings.Contains(js.String(), `"version": "1.0.0"`) {
		t.Errorf("expected indented JSON, got %q", js.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
