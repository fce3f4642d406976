package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultExpiryMargin is how close to expiry a token may get before it is renewed.
const DefaultExpiryMargin = 2 * time.Minute

// Observer receives one event per completed login or refresh call.
// *metrics.Collector satisfies it.
type Observer interface {
	RecordAuth(op, outcome string, duration time.Duration)
}

// Status is a secret-free view of the session for health and debug output.
type Status struct {
	// Authenticated is true once a token pair is held.
	Authenticated bool

	// ExpiresAt is the access token expiry. Zero when unknown.
	ExpiresAt time.Time

	// RenewedAt is when the current pair was installed.
	RenewedAt time.Time

	// LastError is the message of the most recent failed renewal, cleared
	// on success.
	LastError string
}

// Manager owns the single credential pair shared by every upstream call.
//
// At most one login or refresh call is outstanding at any time. Callers that
// need a token while a renewal is running wait for that renewal and receive
// its result.
type Manager struct {
	authority Authority
	margin    time.Duration
	logger    *slog.Logger
	observer  Observer
	now       func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	renewedAt    time.Time
	lastErr      string
	inflight     *flight
}

// flight is one outstanding renewal. done is closed after token and err are set.
type flight struct {
	done  chan struct{}
	token string
	err   error
}

// Option configures a Manager.
type Option func(*Manager)

// WithExpiryMargin sets the renewal margin.
func WithExpiryMargin(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.margin = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver sets the auth event observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates an empty session. The first AcquireAccessToken logs in.
func NewManager(authority Authority, opts ...Option) *Manager {
	m := &Manager{
		authority: authority,
		margin:    DefaultExpiryMargin,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	return m
}

// AcquireAccessToken returns a token that will stay valid for at least the
// expiry margin. When the held token is absent or near expiry it renews first,
// refreshing when a refresh token is held and logging in otherwise or when the
// refresh fails.
//
// Cancelling ctx stops the wait, not the renewal: other callers may be
// waiting on the same result.
func (m *Manager) AcquireAccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if !m.expiringLocked() {
		token := m.accessToken
		m.mu.Unlock()
		return token, nil
	}
	f := m.inflight
	if f == nil {
		f = m.startLocked(ctx, m.renew)
	}
	m.mu.Unlock()

	return f.wait(ctx)
}

// ForceLogin discards the held token and logs in again, bypassing refresh.
// It is used after the upstream rejected a token. A renewal that is already
// running is joined instead of starting a second call.
func (m *Manager) ForceLogin(ctx context.Context) (string, error) {
	m.mu.Lock()
	f := m.inflight
	if f == nil {
		f = m.startLocked(ctx, m.login)
	}
	m.mu.Unlock()

	return f.wait(ctx)
}

// Status returns a snapshot of the session without its secrets.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		Authenticated: m.accessToken != "",
		ExpiresAt:     m.expiresAt,
		RenewedAt:     m.renewedAt,
		LastError:     m.lastErr,
	}
}

// expiringLocked reports whether the held token needs renewal. A token with
// no readable expiry counts as expired. m.mu must be held.
func (m *Manager) expiringLocked() bool {
	if m.accessToken == "" || m.expiresAt.IsZero() {
		return true
	}
	return m.expiresAt.Sub(m.now()) < m.margin
}

// startLocked installs a new flight running op. m.mu must be held.
func (m *Manager) startLocked(ctx context.Context, op func(context.Context) (string, error)) *flight {
	f := &flight{done: make(chan struct{})}
	m.inflight = f

	// The renewal outlives the request that triggered it.
	opCtx := context.WithoutCancel(ctx)

	go func() {
		token, err := op(opCtx)

		m.mu.Lock()
		if m.inflight == f {
			m.inflight = nil
		}
		if err != nil {
			m.lastErr = err.Error()
		}
		m.mu.Unlock()

		f.token, f.err = token, err
		close(f.done)
	}()

	return f
}

func (f *flight) wait(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		return f.token, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// renew refreshes when possible and falls back to login.
func (m *Manager) renew(ctx context.Context) (string, error) {
	m.mu.Lock()
	refreshToken := m.refreshToken
	m.mu.Unlock()

	var refreshErr error
	if refreshToken != "" {
		start := m.now()
		tokens, err := m.authority.Refresh(ctx, refreshToken)
		m.observe("refresh", err, start)
		if err == nil {
			return m.install(tokens), nil
		}
		refreshErr = err
		m.logger.Warn("token refresh failed, falling back to login", "error", err)
	}

	token, err := m.login(ctx)
	if err != nil && refreshErr != nil {
		return "", errors.Join(refreshErr, err)
	}
	return token, err
}

func (m *Manager) login(ctx context.Context) (string, error) {
	start := m.now()
	tokens, err := m.authority.Login(ctx)
	m.observe("login", err, start)
	if err != nil {
		m.logger.Error("login failed", "error", err)
		return "", err
	}
	return m.install(tokens), nil
}

// install replaces the held pair wholesale and returns the new access token.
func (m *Manager) install(tokens Tokens) string {
	exp := TokenExpiry(tokens.AccessToken)

	m.mu.Lock()
	m.accessToken = tokens.AccessToken
	m.refreshToken = tokens.RefreshToken
	m.expiresAt = exp
	m.renewedAt = m.now()
	m.lastErr = ""
	m.mu.Unlock()

	if exp.IsZero() {
		m.logger.Warn("access token has no readable expiry; it will be renewed on next use")
	} else {
		m.logger.Debug("session renewed", "expires_at", exp)
	}

	return tokens.AccessToken
}

func (m *Manager) observe(op string, err error, start time.Time) {
	if m.observer == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.observer.RecordAuth(op, outcome, m.now().Sub(start))
}
