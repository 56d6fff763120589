// Package app is the admin panel without a screen: which page is shown, what
// each page holds, and what every form submission does. Renderers (the TUI and
// the CLI) read its state and call its handlers; nothing here draws anything.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/idilsaglam/adminpanel/internal/model"
	"github.com/idilsaglam/adminpanel/internal/session"
)

// API is the backend surface the panel uses. *api.Client satisfies it.
type API interface {
	Login(ctx context.Context, username, password string) (model.LoginResult, error)
	Register(ctx context.Context, username, password, email string) (model.RegisterResult, error)
	Users(ctx context.Context) ([]model.User, error)
	User(ctx context.Context, id string) (model.User, error)
	Items(ctx context.Context) ([]model.Item, error)
	Item(ctx context.Context, id string) (model.Item, error)
	CreateItem(ctx context.Context, in model.ItemInput) (model.Item, error)
	UpdateItem(ctx context.Context, id string, in model.ItemInput) (model.Item, error)
	DeleteItem(ctx context.Context, id string) error
	Hello(ctx context.Context) (model.ServerInfo, error)
	Search(ctx context.Context, query, kind string) (model.SearchResults, error)
	Analytics(ctx context.Context) (model.Analytics, error)
	RefreshAnalytics(ctx context.Context) (model.Analytics, error)
	CreateTag(ctx context.Context, name string) (model.Tag, error)
	TagItems(ctx context.Context, id string) ([]model.Item, error)
	AuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// Session is the part of session.Session the panel reads and tears down.
type Session interface {
	Authenticated() bool
	CurrentUser() *model.CurrentUser
	Clear(ctx context.Context) error
}

// ErrNotLoggedIn is returned by calls that need a token when none is held.
var ErrNotLoggedIn = session.ErrNoToken

const (
	// DefaultMessageTTL is how long a flash message stays visible.
	DefaultMessageTTL = 5 * time.Second
	// RegisterRedirectDelay is how long the register page lingers after success.
	RegisterRedirectDelay = 2 * time.Second
	// DateLayout renders created_at columns.
	DateLayout = "01/02/2006"
)

// App holds view state. It is safe for concurrent use; network calls are made
// without holding the lock.
type App struct {
	api    API
	sess   Session
	logger *slog.Logger
	now    func() time.Time
	ttl    time.Duration
	loc    *time.Location

	mu          sync.Mutex
	current     Page
	stats       model.Stats
	statsLoaded bool
	users       []UserRow
	items       []ItemRow
	edit        *ItemForm
	messages    map[Page]Message
}

// Option configures an App.
type Option func(*App)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithMessageTTL sets how long flash messages stay visible.
func WithMessageTTL(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.ttl = d
		}
	}
}

// WithLocation sets the zone dates are rendered in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(a *App) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// New builds an App showing no page yet; call Start.
func New(api API, sess Session, opts ...Option) *App {
	a := &App{
		api:      api,
		sess:     sess,
		logger:   slog.Default(),
		now:      time.Now,
		ttl:      DefaultMessageTTL,
		loc:      time.Local,
		messages: make(map[Page]Message),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start performs the first navigation: dashboard when a token is held, login otherwise.
func (a *App) Start(ctx context.Context) Page {
	if a.sess.Authenticated() {
		return a.Navigate(ctx, PageDashboard)
	}
	return a.Navigate(ctx, PageLogin)
}

// CurrentUser is the logged-in account, or nil.
func (a *App) CurrentUser() *model.CurrentUser { return a.sess.CurrentUser() }

// Authenticated reports whether a token is held.
func (a *App) Authenticated() bool { return a.sess.Authenticated() }

// MessageTTL reports how long flash messages stay visible.
func (a *App) MessageTTL() time.Duration { return a.ttl }

func (a *App) requireAuth() error {
	if !a.sess.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}
