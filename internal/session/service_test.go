package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/api"
	"fintrack/internal/core"
)

type fakeAuth struct {
	mu      sync.Mutex
	meCalls int

	loginToken string
	loginErr   error
	user       core.User
	meErr      error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) error {
	return nil
}

func (f *fakeAuth) Me(ctx context.Context, token string) (core.User, error) {
	f.mu.Lock()
	f.meCalls++
	f.mu.Unlock()
	if f.meErr != nil {
		return core.User{}, f.meErr
	}
	return f.user, nil
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]string)}
}

func (m *memTokens) Get(ctx context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[sid], nil
}

func (m *memTokens) Set(ctx context.Context, sid, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sid] = token
	return nil
}

func (m *memTokens) Delete(ctx context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sid)
	return nil
}

func TestLoginSuccess(t *testing.T) {
	auth := &fakeAuth{
		loginToken: "tok-1",
		user:       core.User{ID: "u1", Email: "user@test.local", IsActive: true},
	}
	tokens := newMemTokens()
	svc := NewService(auth, tokens)
	ctx := context.Background()

	st, err := svc.Login(ctx, "sid-1", "user@test.local", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !st.Authenticated() || st.Token != "tok-1" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.User == nil || st.User.Email != "user@test.local" {
		t.Fatalf("profile not resolved: %+v", st.User)
	}

	persisted, _ := tokens.Get(ctx, "sid-1")
	if persisted != "tok-1" {
		t.Fatalf("token not persisted: %q", persisted)
	}
}

func TestLoginRejected(t *testing.T) {
	auth := &fakeAuth{loginErr: api.ErrUnauthorized}
	svc := NewService(auth, newMemTokens())

	_, err := svc.Login(context.Background(), "sid-1", "user@test.local", "wrong")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	st, _ := svc.Bootstrap(context.Background(), "sid-1")
	if st.Authenticated() {
		t.Fatalf("rejected login must not authenticate")
	}
}

func TestBootstrapWithoutTokenSkipsBackend(t *testing.T) {
	auth := &fakeAuth{}
	svc := NewService(auth, newMemTokens())

	st, err := svc.Bootstrap(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if st.Authenticated() {
		t.Fatalf("no token but authenticated: %+v", st)
	}
	if auth.calls() != 0 {
		t.Fatalf("profile endpoint called %d times without a token", auth.calls())
	}
}

func TestBootstrapValidatesPersistedToken(t *testing.T) {
	auth := &fakeAuth{user: core.User{ID: "u1", Email: "user@test.local"}}
	tokens := newMemTokens()
	_ = tokens.Set(context.Background(), "sid-1", "tok-1")
	svc := NewService(auth, tokens)

	st, err := svc.Bootstrap(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !st.Authenticated() || st.User == nil {
		t.Fatalf("persisted token not restored: %+v", st)
	}

	// Second bootstrap serves the cached state.
	before := auth.calls()
	if _, err := svc.Bootstrap(context.Background(), "sid-1"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if auth.calls() != before {
		t.Fatalf("cached session revalidated against the backend")
	}
}

func TestBootstrapClearsInvalidToken(t *testing.T) {
	auth := &fakeAuth{meErr: api.ErrUnauthorized}
	tokens := newMemTokens()
	_ = tokens.Set(context.Background(), "sid-1", "dead-token")
	svc := NewService(auth, tokens)

	st, err := svc.Bootstrap(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if st.Authenticated() {
		t.Fatalf("invalid token must not authenticate")
	}

	persisted, _ := tokens.Get(context.Background(), "sid-1")
	if persisted != "" {
		t.Fatalf("dead token not cleared: %q", persisted)
	}
}

func TestBootstrapDiscardsResultAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	auth := &fakeAuth{user: core.User{ID: "u1", Email: "user@test.local"}}
	// Cancel between the profile call and applying the result.
	cancelling := &cancellingAuth{inner: auth, cancel: cancel}
	tokens := newMemTokens()
	_ = tokens.Set(context.Background(), "sid-1", "tok-1")
	svc := NewService(cancelling, tokens)

	if _, err := svc.Bootstrap(ctx, "sid-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The cancelled result must not have been applied to shared state.
	if st, ok := svc.Current("sid-1"); ok && st.User != nil {
		t.Fatalf("stale result applied: %+v", st)
	}
}

// cancellingAuth cancels the caller's context right after Me succeeds,
// simulating a browser that navigated away mid-flight.
type cancellingAuth struct {
	inner  *fakeAuth
	cancel context.CancelFunc
}

func (c *cancellingAuth) Login(ctx context.Context, email, password string) (string, error) {
	return c.inner.Login(ctx, email, password)
}

func (c *cancellingAuth) Register(ctx context.Context, email, password string) error {
	return c.inner.Register(ctx, email, password)
}

func (c *cancellingAuth) Me(ctx context.Context, token string) (core.User, error) {
	user, err := c.inner.Me(ctx, token)
	c.cancel()
	return user, err
}

func TestLogoutClearsSession(t *testing.T) {
	auth := &fakeAuth{
		loginToken: "tok-1",
		user:       core.User{ID: "u1", Email: "user@test.local"},
	}
	tokens := newMemTokens()
	svc := NewService(auth, tokens)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "sid-1", "user@test.local", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.Logout(ctx, "sid-1")

	if _, ok := svc.Current("sid-1"); ok {
		t.Fatalf("state survived logout")
	}
	persisted, _ := tokens.Get(ctx, "sid-1")
	if persisted != "" {
		t.Fatalf("token survived logout: %q", persisted)
	}
}

func TestLogoutWithCancelledContextStillClearsToken(t *testing.T) {
	auth := &fakeAuth{loginToken: "tok-1", user: core.User{ID: "u1"}}
	tokens := newMemTokens()
	svc := NewService(auth, tokens)

	if _, err := svc.Login(context.Background(), "sid-1", "user@test.local", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Logout(ctx, "sid-1")

	persisted, _ := tokens.Get(context.Background(), "sid-1")
	if persisted != "" {
		t.Fatalf("cancelled context prevented token cleanup: %q", persisted)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	auth := &fakeAuth{loginToken: "tok-1", user: core.User{ID: "u1", Email: "a@test.local"}}
	svc := NewService(auth, newMemTokens())
	ctx := context.Background()

	if _, err := svc.Login(ctx, "sid-a", "a@test.local", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	st, err := svc.Bootstrap(ctx, "sid-b")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if st.Authenticated() {
		t.Fatalf("session sid-b inherited sid-a's auth")
	}
}
