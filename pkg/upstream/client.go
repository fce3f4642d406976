package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"awqat-hq/gateway/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 10 << 20

// TokenSource supplies bearer tokens. *session.Manager satisfies it.
type TokenSource interface {
	AcquireAccessToken(ctx context.Context) (string, error)
	ForceLogin(ctx context.Context) (string, error)
}

// Observer receives one event per upstream HTTP attempt.
// *metrics.Collector satisfies it.
type Observer interface {
	RecordUpstreamRequest(endpoint, status string, duration time.Duration)
	RecordUpstreamError(endpoint, kind string)
}

// Client issues authenticated GET requests to the upstream provider.
type Client struct {
	baseURL  string
	tokens   TokenSource
	http     *http.Client
	logger   *slog.Logger
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the request observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client for baseURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    httpClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "upstream")
	return c
}

// FetchAuthenticated GETs baseURL+path with a bearer token and returns the
// JSON body.
//
// If the upstream answers 401 the session is logged in again and the request
// is retried exactly once; whatever the second attempt returns is final.
// Failures are *StatusError, *TransportError, *DecodeError, or the session
// error that prevented a token from being obtained.
func (c *Client) FetchAuthenticated(ctx context.Context, path string) (body json.RawMessage, err error) {
	ctx, span := tracing.Start(ctx, "upstream GET "+Endpoint(path), trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		tracing.SetUpstreamAttributes(span, Endpoint(path), StatusOf(err))
		tracing.SetError(span, err)
		span.End()
	}()

	token, err := c.tokens.AcquireAccessToken(ctx)
	if err != nil {
		c.recordError(path, "auth")
		return nil, fmt.Errorf("failed to acquire access token: %w", err)
	}

	resp, err := c.get(ctx, path, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.logger.InfoContext(ctx, "upstream rejected token, logging in again", "path", path)
		span.SetAttributes(attribute.Bool(tracing.AttrUpstreamRetry, true))

		token, err = c.tokens.ForceLogin(ctx)
		if err != nil {
			c.recordError(path, "auth")
			return nil, fmt.Errorf("failed to log in after 401: %w", err)
		}

		resp, err = c.get(ctx, path, token)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	return c.read(ctx, resp, path)
}

func (c *Client) get(ctx context.Context, path, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recordError(path, "transport")
		c.logger.WarnContext(ctx, "upstream request failed", "path", path, "error", err)
		return nil, &TransportError{Path: path, Timeout: isTimeout(err), Cause: err}
	}

	if c.observer != nil {
		c.observer.RecordUpstreamRequest(Endpoint(path), strconv.Itoa(resp.StatusCode), time.Since(start))
	}

	return resp, nil
}

func (c *Client) read(ctx context.Context, resp *http.Response, path string) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.recordError(path, "transport")
		return nil, &TransportError{Path: path, Timeout: isTimeout(err), Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := newStatusError(path, resp.StatusCode, body)
		c.recordError(path, "status")
		c.logger.WarnContext(ctx, "upstream returned error status",
			"path", path,
			"status", resp.StatusCode,
			"body", serr.Excerpt(),
		)
		return nil, serr
	}

	if !json.Valid(body) {
		c.recordError(path, "decode")
		return nil, &DecodeError{Path: path, Raw: truncate(string(body), MaxExcerpt)}
	}

	return json.RawMessage(body), nil
}

func (c *Client) recordError(path, kind string) {
	if c.observer != nil {
		c.observer.RecordUpstreamError(Endpoint(path), kind)
	}
}

// Endpoint returns a low-cardinality label for path by dropping its last
// segment: "/api/PrayerTime/Daily/9541" becomes "/api/PrayerTime/Daily".
// Paths with fewer than four segments are returned as is.
func Endpoint(path string) string {
	if strings.Count(path, "/") < 4 {
		return path
	}
	return path[:strings.LastIndexByte(path, '/')]
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
