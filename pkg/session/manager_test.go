package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()

	b := jwt.NewBuilder().Subject("gateway").IssuedAt(time.Now())
	if !exp.IsZero() {
		b = b.Expiration(exp)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("test-secret")))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return string(signed)
}

// fakeAuthority counts calls and hands out pre-built tokens.
type fakeAuthority struct {
	logins    atomic.Int32
	refreshes atomic.Int32

	loginErr   error
	refreshErr error

	// gate, when set, blocks every call until closed.
	gate chan struct{}

	token   func() string
	refresh string
}

func (f *fakeAuthority) Login(ctx context.Context) (Tokens, error) {
	f.logins.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.loginErr != nil {
		return Tokens{}, f.loginErr
	}
	return Tokens{AccessToken: f.token(), RefreshToken: "refresh-1"}, nil
}

func (f *fakeAuthority) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	f.refreshes.Add(1)
	f.refresh = refreshToken
	if f.gate != nil {
		<-f.gate
	}
	if f.refreshErr != nil {
		return Tokens{}, f.refreshErr
	}
	return Tokens{AccessToken: f.token(), RefreshToken: "refresh-2"}, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) RecordAuth(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, op+":"+outcome)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix())))

	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{"valid", makeToken(t, exp), exp},
		{"no exp claim", makeToken(t, time.Time{}), time.Time{}},
		{"empty", "", time.Time{}},
		{"garbage", "not-a-token", time.Time{}},
		{"bad payload", "eyJhbGciOiJIUzI1NiJ9.%%%.sig", time.Time{}},
		{"header ignored", "xyz." + payload + ".sig", exp},
		{"no signature", "e30." + payload, exp},
		{"padded payload", "e30." + base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix()))) + ".", exp},
		{"payload not json", "e30." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".sig", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenExpiry(tt.token)
			if !got.Equal(tt.want) {
				t.Errorf("expected expiry %v, got %v", tt.want, got)
			}
		})
	}
}

func TestManager_LoginOnFirstUse(t *testing.T) {
	token := makeToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuthority{token: func() string { return token }}
	m := NewManager(auth)

	got, err := m.AcquireAccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != token {
		t.Errorf("expected issued token, got %q", got)
	}

	// A fresh token is reused without touching the authority.
	if _, err := m.AcquireAccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.logins.Load() != 1 || auth.refreshes.Load() != 0 {
		t.Errorf("expected 1 login and 0 refreshes, got %d and %d", auth.logins.Load(), auth.refreshes.Load())
	}

	st := m.Status()
	if !st.Authenticated || st.ExpiresAt.IsZero() {
		t.Errorf("expected authenticated status with expiry, got %+v", st)
	}
}

func TestManager_NearExpiryRefreshes(t *testing.T) {
	// First token expires inside the margin, second is fresh.
	near := makeToken(t, time.Now().Add(time.Minute))
	fresh := makeToken(t, time.Now().Add(time.Hour))
	var issued atomic.Int32
	auth := &fakeAuthority{token: func() string {
		if issued.Add(1) == 1 {
			return near
		}
		return fresh
	}}
	m := NewManager(auth)

	if _, err := m.AcquireAccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.AcquireAccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fresh {
		t.Error("expected refreshed token")
	}
	if auth.refreshes.Load() != 1 {
		t.Errorf("expected 1 refresh, got %d", auth.refreshes.Load())
	}
	if auth.refresh != "refresh-1" {
		t.Errorf("expected refresh with held token, got %q", auth.refresh)
	}
}

func TestManager_TokenWithoutExpiryIsRenewed(t *testing.T) {
	token := makeToken(t, time.Time{})
	auth := &fakeAuthority{token: func() string { return token }}
	m := NewManager(auth)

	for i := 0; i < 3; i++ {
		if _, err := m.AcquireAccessToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// One login, then a refresh on each later call.
	if auth.logins.Load() != 1 || auth.refreshes.Load() != 2 {
		t.Errorf("expected 1 login and 2 refreshes, got %d and %d", auth.logins.Load(), auth.refreshes.Load())
	}
}

func TestManager_SingleFlight(t *testing.T) {
	token := makeToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuthority{
		token: func() string { return token },
		gate:  make(chan struct{}),
	}
	m := NewManager(auth)

	const callers = 50
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.AcquireAccessToken(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(auth.gate)
	wg.Wait()

	if auth.logins.Load() != 1 {
		t.Errorf("expected exactly 1 login, got %d", auth.logins.Load())
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if results[i] != token {
			t.Fatalf("caller %d: got a different token", i)
		}
	}
}

func TestManager_RefreshFailureFallsBackToLogin(t *testing.T) {
	near := makeToken(t, time.Now().Add(30*time.Second))
	fresh := makeToken(t, time.Now().Add(time.Hour))
	var issued atomic.Int32
	auth := &fakeAuthority{
		token: func() string {
			if issued.Add(1) == 1 {
				return near
			}
			return fresh
		},
		refreshErr: &AuthError{Op: "refresh", StatusCode: 500},
	}
	m := NewManager(auth)

	if _, err := m.AcquireAccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.AcquireAccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fresh {
		t.Error("expected token from fallback login")
	}
	if auth.refreshes.Load() != 1 || auth.logins.Load() != 2 {
		t.Errorf("expected 1 refresh and 2 logins, got %d and %d", auth.refreshes.Load(), auth.logins.Load())
	}
}

func TestManager_BothFail(t *testing.T) {
	auth := &fakeAuthority{
		token:    func() string { return "" },
		loginErr: &AuthError{Op: "login", StatusCode: 401},
	}
	m := NewManager(auth)

	_, err := m.AcquireAccessToken(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsAuthError(err) {
		t.Errorf("expected AuthError, got %T", err)
	}
	if m.Status().LastError == "" {
		t.Error("expected last error recorded")
	}

	// The failed flight is cleared, so the next call tries again.
	if _, err := m.AcquireAccessToken(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if auth.logins.Load() != 2 {
		t.Errorf("expected 2 login attempts, got %d", auth.logins.Load())
	}
}

func TestManager_ForceLoginBypassesRefresh(t *testing.T) {
	token := makeToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuthority{token: func() string { return token }}
	m := NewManager(auth)

	if _, err := m.AcquireAccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.ForceLogin(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth.logins.Load() != 2 || auth.refreshes.Load() != 0 {
		t.Errorf("expected 2 logins and 0 refreshes, got %d and %d", auth.logins.Load(), auth.refreshes.Load())
	}
}

func TestManager_ForceLoginJoinsRunningRefresh(t *testing.T) {
	near := makeToken(t, time.Now().Add(30*time.Second))
	refreshed := makeToken(t, time.Now().Add(time.Hour))
	var issued atomic.Int32
	auth := &fakeAuthority{
		token: func() string {
			if issued.Add(1) == 1 {
				return near
			}
			return refreshed
		},
	}
	m := NewManager(auth)

	if _, err := m.AcquireAccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	auth.gate = make(chan struct{})
	acquired := make(chan string, 1)
	go func() {
		token, _ := m.AcquireAccessToken(context.Background())
		acquired <- token
	}()

	deadline := time.Now().Add(time.Second)
	for auth.refreshes.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	forced := make(chan string, 1)
	go func() {
		token, _ := m.ForceLogin(context.Background())
		forced <- token
	}()

	time.Sleep(20 * time.Millisecond)
	close(auth.gate)

	if got := <-forced; got != refreshed {
		t.Error("expected ForceLogin to return the token from the running refresh")
	}
	if got := <-acquired; got != refreshed {
		t.Error("expected acquirer to get the refreshed token")
	}
	if auth.logins.Load() != 1 || auth.refreshes.Load() != 1 {
		t.Errorf("expected 1 login and 1 refresh, got %d and %d", auth.logins.Load(), auth.refreshes.Load())
	}
}

func TestManager_WaitHonoursContext(t *testing.T) {
	token := makeToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuthority{
		token: func() string { return token },
		gate:  make(chan struct{}),
	}
	m := NewManager(auth)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.AcquireAccessToken(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// The renewal keeps running and serves the next caller.
	close(auth.gate)
	got, err := m.AcquireAccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != token {
		t.Error("expected token from the original renewal")
	}
	if auth.logins.Load() != 1 {
		t.Errorf("expected 1 login, got %d", auth.logins.Load())
	}
}

func TestManager_Observer(t *testing.T) {
	token := makeToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuthority{token: func() string { return token }}
	obs := &recordingObserver{}
	m := NewManager(auth, WithObserver(obs), WithExpiryMargin(2*time.Hour))

	// The margin exceeds the token lifetime, so the second call refreshes.
	for i := 0; i < 2; i++ {
		if _, err := m.AcquireAccessToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	want := []string{"login:success", "refresh:success"}
	if len(obs.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, obs.events)
	}
	for i := range want {
		if obs.events[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], obs.events[i])
		}
	}
}
