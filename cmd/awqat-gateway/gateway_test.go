package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"awqat-hq/gateway/pkg/config"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().Expiration(exp).Build()
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("test-secret")))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return string(signed)
}

// fakeProvider mimics the upstream Auth and PrayerTime endpoints.
type fakeProvider struct {
	logins atomic.Int32
	daily  atomic.Int32
	token  string
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/Auth/Login":
		p.logins.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"accessToken": p.token, "refreshToken": "rt-1"},
		})
	case strings.HasPrefix(r.URL.Path, "/api/PrayerTime/Daily/"):
		if r.Header.Get("Authorization") != "Bearer "+p.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.daily.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"fajr":"05:12"}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false}`)
	}
}

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{
		Server:   config.ServerConfig{AllowedOrigin: "https://app.example.com"},
		Upstream: config.UpstreamConfig{BaseURL: baseURL, Email: "ops@example.com", Password: "pw"},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestGateway_EndToEnd(t *testing.T) {
	provider := &fakeProvider{token: signedToken(t, time.Now().Add(time.Hour))}
	upstreamSrv := httptest.NewServer(provider)
	defer upstreamSrv.Close()

	gw, err := newGateway(testConfig(upstreamSrv.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newGateway failed: %v", err)
	}
	defer gw.close()

	handler := gw.server.Handler()
	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	first := get("/api/awqat/daily?cityId=9541")
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", first.Code, first.Body.String())
	}
	if first.Header().Get("X-Cache") != "MISS" {
		t.Errorf("expected X-Cache MISS, got %q", first.Header().Get("X-Cache"))
	}

	second := get("/api/awqat/daily?cityId=9541")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("expected X-Cache HIT, got %q", second.Header().Get("X-Cache"))
	}
	if provider.logins.Load() != 1 || provider.daily.Load() != 1 {
		t.Errorf("expected 1 login and 1 daily fetch, got %d and %d", provider.logins.Load(), provider.daily.Load())
	}

	notFound := get("/api/awqat/states?countryId=1")
	if notFound.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", notFound.Code)
	}
	if !strings.Contains(notFound.Body.String(), `"upstreamStatus":404`) {
		t.Errorf("expected upstreamStatus 404 in %s", notFound.Body.String())
	}

	ready := get("/ready")
	if ready.Code != http.StatusOK {
		t.Errorf("expected /ready 200, got %d: %s", ready.Code, ready.Body.String())
	}

	metrics := get("/metrics")
	if metrics.Code != http.StatusOK {
		t.Fatalf("expected /metrics 200, got %d", metrics.Code)
	}
	if !strings.Contains(metrics.Body.String(), "awqat_") {
		t.Errorf("expected awqat metrics in exposition")
	}

	debug := get("/api/debug/env")
	if strings.Contains(debug.Body.String(), "ops@example.com") {
		t.Errorf("debug route leaked the email: %s", debug.Body.String())
	}
}

func TestGateway_ApplyConfig(t *testing.T) {
	gw, err := newGateway(testConfig("http://127.0.0.1:1"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newGateway failed: %v", err)
	}
	defer gw.close()

	cfg := testConfig("http://127.0.0.1:1")
	daily := 45.0
	cfg.Cache.DailyTTLMinutes = &daily
	cfg.Cache.LookupTTLHours = 2
	gw.applyConfig(cfg)

	policy := gw.awqat.Policy()
	if policy.Daily != 30*time.Minute {
		t.Errorf("expected daily TTL clamped to 30m, got %s", policy.Daily)
	}
	if policy.Lookup != 2*time.Hour {
		t.Errorf("expected lookup TTL 2h, got %s", policy.Lookup)
	}
}
