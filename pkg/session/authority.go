package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"awqat-hq/gateway/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tokens is a credential pair issued by the upstream authority.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Authority issues credentials. HTTPAuthority talks to the real provider;
// tests substitute their own.
type Authority interface {
	// Login exchanges the configured credentials for a fresh token pair.
	Login(ctx context.Context) (Tokens, error)

	// Refresh exchanges a refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// Credentials are the login identity used against the authority.
type Credentials struct {
	Email    string
	Password string
}

// HTTPAuthority implements Authority against the provider's Auth endpoints:
//
//	POST {base}/api/Auth/Login               {"email","password"}
//	GET  {base}/api/Auth/RefreshToken/{token}
//
// Both answer {"data":{"accessToken","refreshToken"}}.
type HTTPAuthority struct {
	baseURL     string
	credentials Credentials
	client      *http.Client
}

// NewHTTPAuthority creates an authority client. A nil client uses
// http.DefaultClient.
func NewHTTPAuthority(baseURL string, creds Credentials, client *http.Client) *HTTPAuthority {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAuthority{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: creds,
		client:      client,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenEnvelope is the response shape shared by login and refresh.
type tokenEnvelope struct {
	Data *struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

// Login implements Authority.
func (a *HTTPAuthority) Login(ctx context.Context) (Tokens, error) {
	body, err := json.Marshal(loginRequest{
		Email:    a.credentials.Email,
		Password: a.credentials.Password,
	})
	if err != nil {
		return Tokens{}, &AuthError{Op: "login", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/Auth/Login", bytes.NewReader(body))
	if err != nil {
		return Tokens{}, &AuthError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return a.do(req, "login")
}

// Refresh implements Authority.
func (a *HTTPAuthority) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, &AuthError{Op: "refresh", Err: ErrNoRefreshToken}
	}

	endpoint := a.baseURL + "/api/Auth/RefreshToken/" + url.PathEscape(refreshToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Tokens{}, &AuthError{Op: "refresh", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	return a.do(req, "refresh")
}

func (a *HTTPAuthority) do(req *http.Request, op string) (tokens Tokens, err error) {
	ctx, span := tracing.Start(req.Context(), "session."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrAuthOperation, op)),
	)
	defer func() {
		tracing.SetError(span, err)
		span.End()
	}()

	req = req.WithContext(ctx)
	tracing.Inject(ctx, req.Header)

	resp, err := a.client.Do(req)
	if err != nil {
		return Tokens{}, &AuthError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Tokens{}, &AuthError{Op: op, StatusCode: resp.StatusCode}
	}

	var env tokenEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Tokens{}, &AuthError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if env.Data == nil || env.Data.AccessToken == "" || env.Data.RefreshToken == "" {
		return Tokens{}, &AuthError{Op: op, Err: ErrMissingTokens}
	}

	return Tokens{
		AccessToken:  env.Data.AccessToken,
		RefreshToken: env.Data.RefreshToken,
	}, nil
}
