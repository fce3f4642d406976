package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"awqat-hq/gateway/pkg/proxy/types"
)

func TestCORSMiddleware(t *testing.T) {
	const allowed = "https://app.example"

	tests := []struct {
		name          string
		method        string
		origin        string
		preflight     bool
		wantStatus    int
		wantAllow     string
		wantNextCalls int
	}{
		{name: "no origin passes through", method: http.MethodGet, wantStatus: http.StatusOK, wantNextCalls: 1},
		{name: "allowed origin", method: http.MethodGet, origin: allowed, wantStatus: http.StatusOK, wantAllow: allowed, wantNextCalls: 1},
		{name: "allowed preflight", method: http.MethodOptions, origin: allowed, preflight: true, wantStatus: http.StatusNoContent, wantAllow: allowed},
		{name: "foreign origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusForbidden},
		{name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: http.StatusForbidden},
		{name: "origin differing by scheme", method: http.MethodGet, origin: "http://app.example", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/api/awqat/countries", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
				req.Header.Set("Access-Control-Request-Headers", "x-request-id")
			}
			w := httptest.NewRecorder()

			CORSMiddleware(DefaultCORSConfig(allowed))(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("expected Access-Control-Allow-Origin %q, got %q", tt.wantAllow, got)
			}
			if calls != tt.wantNextCalls {
				t.Errorf("expected next to be called %d times, got %d", tt.wantNextCalls, calls)
			}
		})
	}
}

func TestCORSMiddleware_RejectionBody(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run for a foreign origin")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/awqat/daily?cityId=1", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()

	CORSMiddleware(DefaultCORSConfig("https://app.example"))(next).ServeHTTP(w, req)

	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Not allowed by CORS" {
		t.Errorf("expected CORS error message, got %q", body.Error)
	}
}

func TestCORSMiddleware_PreflightHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/awqat/daily", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-request-id")
	w := httptest.NewRecorder()

	CORSMiddleware(DefaultCORSConfig("https://app.example"))(next).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, HEAD, OPTIONS" {
		t.Errorf("unexpected Access-Control-Allow-Methods %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "x-request-id" {
		t.Errorf("expected requested headers to be reflected, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("expected max age 600, got %q", got)
	}
}
