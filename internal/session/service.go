// Package session owns the authentication session lifecycle: the persisted
// bearer token, the resolved user profile, and the login/logout/bootstrap
// operations the view layer drives.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/api"
	"fintrack/internal/core"
)

// TokenStore is the persisted single key-value cell holding each browser
// session's bearer token. It is read at startup of a session and written on
// every auth state change.
type TokenStore interface {
	Get(ctx context.Context, sid string) (string, error)
	Set(ctx context.Context, sid, token string) error
	Delete(ctx context.Context, sid string) error
}

// State is a snapshot of one browser session. User is populated only when
// the token has been validated against the backend; an absent token always
// means unauthenticated.
type State struct {
	Token string
	User  *core.User
}

func (s State) Authenticated() bool {
	return s.Token != ""
}

// Service is the single shared session store. All views observe the same
// instance; per-page copies would let auth state drift between pages.
type Service struct {
	auth   api.Authenticator
	tokens TokenStore

	mu     sync.Mutex
	states map[string]State
}

func NewService(auth api.Authenticator, tokens TokenStore) *Service {
	return &Service{
		auth:   auth,
		tokens: tokens,
		states: make(map[string]State),
	}
}

// Bootstrap resolves the session for sid. With no persisted token it
// reports unauthenticated without touching the backend. With a token it
// validates via the profile endpoint; any failure clears the persisted
// token and the cached state. A context cancelled before the result can be
// applied discards the result instead of writing it to shared state, so a
// caller that navigated away never observes a stale application.
func (s *Service) Bootstrap(ctx context.Context, sid string) (State, error) {
	s.mu.Lock()
	if st, ok := s.states[sid]; ok && st.User != nil {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	token, err := s.tokens.Get(ctx, sid)
	if err != nil {
		return State{}, fmt.Errorf("bootstrap: %w", err)
	}
	if token == "" {
		return State{}, nil
	}

	user, err := s.auth.Me(ctx, token)
	if err != nil {
		slog.InfoContext(ctx, "Session bootstrap failed, clearing token", "error", err)
		s.discard(ctx, sid)
		return State{}, nil
	}

	if ctx.Err() != nil {
		// The initiating caller is gone; do not apply the result.
		return State{}, ctx.Err()
	}

	st := State{Token: token, User: &user}
	s.mu.Lock()
	s.states[sid] = st
	s.mu.Unlock()
	return st, nil
}

// Login exchanges credentials for a token, persists it, then fetches the
// profile. Rejected credentials surface as api.ErrUnauthorized; callers
// show a single generic message and never backend detail.
func (s *Service) Login(ctx context.Context, sid, email, password string) (State, error) {
	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return State{}, fmt.Errorf("login: %w", err)
	}

	if err := s.tokens.Set(ctx, sid, token); err != nil {
		return State{}, fmt.Errorf("login: persist token: %w", err)
	}
	st := State{Token: token}
	s.mu.Lock()
	s.states[sid] = st
	s.mu.Unlock()

	user, err := s.auth.Me(ctx, token)
	if err != nil {
		return st, fmt.Errorf("login: resolve profile: %w", err)
	}
	st.User = &user
	s.mu.Lock()
	s.states[sid] = st
	s.mu.Unlock()
	return st, nil
}

// Register creates an account. It does not authenticate; the login page
// performs a login right after, matching the original sign-up flow.
func (s *Service) Register(ctx context.Context, email, password string) error {
	if err := s.auth.Register(ctx, email, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears the persisted token and in-memory state. No backend call
// is made; the token simply stops being presented.
func (s *Service) Logout(ctx context.Context, sid string) {
	s.discard(ctx, sid)
}

// Clear drops the session after an authenticated call came back with
// api.ErrUnauthorized, so the guarded routes redirect to login.
func (s *Service) Clear(ctx context.Context, sid string) {
	s.discard(ctx, sid)
}

// Current returns the cached snapshot without touching the backend.
func (s *Service) Current(sid string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sid]
	return st, ok
}

func (s *Service) discard(ctx context.Context, sid string) {
	// The token must be cleared even when the caller's context is already
	// cancelled, otherwise a dead token would be revalidated forever.
	if err := s.tokens.Delete(context.WithoutCancel(ctx), sid); err != nil {
		slog.ErrorContext(ctx, "Failed to clear persisted token", "error", err)
	}
	s.mu.Lock()
	delete(s.states, sid)
	s.mu.Unlock()
}
