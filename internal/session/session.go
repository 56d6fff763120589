// Package session holds the auth token and current user for one client run.
// It is the explicit context object the API client and router share.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/idilsaglam/adminpanel/internal/model"
	"github.com/idilsaglam/adminpanel/internal/store"
)

// EnvToken overrides any persisted token when set.
const EnvToken = "ADMINPANEL_TOKEN"

// Where the token came from.
const (
	SourceNone  = ""
	SourceStore = "store"
	SourceEnv   = "env"
)

// ErrNoToken is returned when a token is required but none is held.
var ErrNoToken = errors.New("not logged in")

// Session is safe for concurrent use.
type Session struct {
	store  store.Store
	logger *slog.Logger
	getenv func(string) string

	mu     sync.RWMutex
	token  string
	user   *model.CurrentUser
	source string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithGetenv replaces os.Getenv, mostly for tests.
func WithGetenv(fn func(string) string) Option {
	return func(s *Session) { s.getenv = fn }
}

// New returns an empty session persisted through st. Call Init to load state.
func New(st store.Store, opts ...Option) *Session {
	s := &Session{
		store:  st,
		logger: slog.Default(),
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init reads the persisted token and user. The env override wins over the store.
func (s *Session) Init(ctx context.Context) error {
	token, source, err := s.readToken(ctx)
	if err != nil {
		return err
	}
	user, err := s.readUser(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.source, s.user = token, source, user
	return nil
}

func (s *Session) readToken(ctx context.Context) (string, string, error) {
	if env := StripBearer(strings.TrimSpace(s.getenv(EnvToken))); env != "" {
		return env, SourceEnv, nil
	}
	v, err := s.store.Get(ctx, store.KeyToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", SourceNone, nil
	}
	if err != nil {
		return "", SourceNone, fmt.Errorf("read token: %w", err)
	}
	v = StripBearer(strings.TrimSpace(v))
	if v == "" {
		return "", SourceNone, nil
	}
	return v, SourceStore, nil
}

func (s *Session) readUser(ctx context.Context) (*model.CurrentUser, error) {
	raw, err := s.store.Get(ctx, store.KeyCurrentUser)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}
	var u model.CurrentUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("ignoring unreadable current user", "error", err)
		return nil, nil
	}
	return &u, nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser returns a copy of the logged-in user, or nil.
func (s *Session) CurrentUser() *model.CurrentUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Source reports where the token came from.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// Save persists a fresh login.
func (s *Session) Save(ctx context.Context, token string, user model.CurrentUser) error {
	token = StripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal current user: %w", err)
	}
	if err := s.store.Set(ctx, store.KeyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.store.Set(ctx, store.KeyCurrentUser, string(b)); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.source, s.user = token, SourceStore, &user
	return nil
}

// Clear forgets the session in memory and in the store. An env-provided token
// is only dropped from memory.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.source, s.user = "", SourceNone, nil
	s.mu.Unlock()

	var errs []error
	for _, k := range []string{store.KeyToken, store.KeyCurrentUser} {
		if err := s.store.Remove(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// StripBearer removes a leading "Bearer " in any case.
func StripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
