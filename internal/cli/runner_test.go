package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/config"
	"github.com/idilsaglam/adminpanel/internal/store"
	"github.com/idilsaglam/adminpanel/internal/testutil"
)

type result struct {
	code     int
	out, err string
}

type fixture struct {
	t       *testing.T
	backend *testutil.Backend
	store   *store.MemoryStore
	env     map[string]string
	stdin   string
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:       t,
		backend: testutil.NewBackend(t),
		store:   store.NewMemoryStore(),
		env:     map[string]string{},
	}
}

func (f *fixture) options() Options {
	cfg := config.Default()
	cfg.API.BaseURL = f.backend.URL()
	return Options{
		Config: cfg,
		Store:  f.store,
		Stdin:  strings.NewReader(f.stdin),
		Getenv: func(k string) string { return f.env[k] },
		RunTUI: func(context.Context, *app.App) error {
			f.t.Fatal("tui started")
			return nil
		},
	}
}

func (f *fixture) run(args ...string) result {
	f.t.Helper()
	return f.runWith(f.options(), args...)
}

func (f *fixture) runWith(opt Options, args ...string) result {
	f.t.Helper()
	var out, errw bytes.Buffer
	opt.Out, opt.Err = &out, &errw
	code := Run(context.Background(), args, opt)
	return result{code: code, out: out.String(), err: errw.String()}
}

// loginAs stores a backend-issued token as if `login` had run.
func (f *fixture) loginAs(username string) string {
	f.t.Helper()
	u := f.backend.AddUser(username, "password1", username+"@example.com")
	ctx := context.Background()
	require.NoError(f.t, f.store.Set(ctx, store.KeyToken, f.backend.TokenFor(u.ID)))
	require.NoError(f.t, f.store.Set(ctx, store.KeyCurrentUser, `{"id":"`+u.ID+`","username":"`+username+`"}`))
	return u.ID
}

func TestHelp(t *testing.T) {
	f := newFixture(t)
	r := f.run("help")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.out, "Usage:")
	assert.Contains(t, r.out, "search <query>")
}

func TestNoArgs(t *testing.T) {
	f := newFixture(t)
	r := f.run()
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "Usage:")

	called := false
	opt := f.options()
	opt.Interactive = true
	opt.RunTUI = func(context.Context, *app.App) error {
		called = true
		return nil
	}
	r = f.runWith(opt)
	assert.Equal(t, 0, r.code)
	assert.True(t, called)
}

func TestTUIErrorExitsOne(t *testing.T) {
	f := newFixture(t)
	opt := f.options()
	opt.RunTUI = func(context.Context, *app.App) error { return errors.New("no tty") }
	r := f.runWith(opt, "tui")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "no tty")
}

func TestUnknownSubcommand(t *testing.T) {
	f := newFixture(t)
	r := f.run("frobnicate")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "unknown subcommand: frobnicate")
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		env   string
		stdin string
	}{
		{name: "flag", args: []string{"login", "ann", "--password", "password1"}},
		{name: "flag first", args: []string{"login", "--password", "password1", "ann"}},
		{name: "env", args: []string{"login", "ann"}, env: "password1"},
		{name: "stdin", args: []string{"login", "ann"}, stdin: "password1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.backend.AddUser("ann", "password1", "ann@example.com")
			f.env[EnvPassword] = tt.env
			f.stdin = tt.stdin

			r := f.run(tt.args...)
			require.Equal(t, 0, r.code, r.err)
			assert.Contains(t, r.out, app.MsgLoginOK)

			tok, err := f.store.Get(context.Background(), store.KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "token-"+u.ID, tok)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("ann", "password1", "ann@example.com")

	r := f.run("login", "ann", "--password", "wrong")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "Invalid credentials")

	r = f.run("login", "ann")
	assert.Equal(t, 2, r.code, "empty stdin means no password")

	r = f.run("login")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "usage: adminpanel login")
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	r := f.run("register", "bob", "bob@example.com", "--password", "password1")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, app.MsgRegisterOK)

	_, err := f.store.Get(context.Background(), store.KeyToken)
	assert.ErrorIs(t, err, store.ErrNotFound, "register does not log in")

	r = f.run("register", "bob", "bob@example.com", "--password", "password1")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "Username already taken")
}

func TestCommandsNeedLogin(t *testing.T) {
	f := newFixture(t)
	for _, args := range [][]string{
		{"dashboard"},
		{"users"},
		{"user", "u1"},
		{"items"},
		{"item", "i1"},
		{"add", "Lamp", "10"},
		{"update", "i1", "Lamp", "10"},
		{"rm", "i1"},
		{"search", "lamp"},
		{"stats"},
		{"whoami"},
		{"audit"},
		{"tag", "lighting"},
		{"tagged", "t1"},
	} {
		r := f.run(args...)
		assert.Equal(t, 2, r.code, args)
		assert.Contains(t, r.err, "not logged in", args)
	}
	assert.Empty(t, f.backend.Requests(), "the gate stops requests before they are sent")
}

func TestBrowse(t *testing.T) {
	f := newFixture(t)
	id := f.loginAs("ann")
	f.backend.AddItem("Desk lamp", "brass", 19.5, id)
	f.backend.AddItem("Chair", "oak", 80, id)

	r := f.run("dashboard")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Total Users")
	assert.Contains(t, r.out, "signed in as ann")

	r = f.run("users")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "ann@example.com")

	r = f.run("items")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Desk lamp")
	assert.Contains(t, r.out, "$19.50")
	assert.Contains(t, r.out, "$80.00")

	r = f.run("user", id)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "ann@example.com")

	r = f.run("user", "nope")
	assert.Equal(t, 1, r.code)
}

func TestLoaderFailureExitsOne(t *testing.T) {
	f := newFixture(t)
	f.loginAs("ann")
	f.backend.Fail("GET", "/api/items", 500, "database unavailable")

	r := f.run("items")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "database unavailable")
}

func TestItemLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.loginAs("ann")
	it := f.backend.AddItem("Chair", "oak", 80, id)

	r := f.run("add", "Desk lamp", "19.5", "brass,", "dimmable")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, app.MsgItemAdded)
	assert.Equal(t, 2, f.backend.ItemCount())

	r = f.run("add", "Desk lamp", "cheap")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "Invalid price")
	assert.Equal(t, 2, f.backend.ItemCount())

	r = f.run("update", it.ID, "Armchair", "120")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, app.MsgItemSaved)

	r = f.run("item", it.ID)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Armchair")
	assert.Contains(t, r.out, "$120.00")

	r = f.run("rm", it.ID)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, app.MsgItemGone)
	assert.Equal(t, 1, f.backend.ItemCount())

	r = f.run("rm", it.ID)
	assert.Equal(t, 1, r.code)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	id := f.loginAs("ann")
	f.backend.AddItem("Desk lamp", "brass", 19.5, id)

	r := f.run("search", "lamp", "--type", "items")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Items (1)")
	assert.NotContains(t, r.out, "Users (")
	assert.Equal(t, "items", f.backend.LastRequest().Query.Get("type"))

	r = f.run("search", "ann")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Users (1)")
	assert.Contains(t, r.out, "Items (0)")

	r = f.run("search", "lamp", "--type", "tags")
	assert.Equal(t, 2, r.code)
}

func TestStatsAndPing(t *testing.T) {
	f := newFixture(t)
	f.loginAs("ann")

	r := f.run("stats", "--refresh")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Analytics")
	assert.Equal(t, "/api/analytics/refresh", f.backend.LastRequest().Path)

	r = f.run("ping")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "aServ 1.0.0 is up")
}

func TestStatusAndLogout(t *testing.T) {
	f := newFixture(t)

	r := f.run("status")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.out, "false")

	f.loginAs("ann")
	r = f.run("status")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.out, "ann (")
	assert.Contains(t, r.out, "store")

	r = f.run("logout")
	require.Equal(t, 0, r.code)
	assert.Contains(t, r.out, "logged out")
	assert.Equal(t, 0, f.store.Len())

	r = f.run("logout")
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.out, "already logged out")
}

func TestWhoami(t *testing.T) {
	f := newFixture(t)
	f.loginAs("ann")
	r := f.run("whoami")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "ann")
	assert.NotContains(t, r.out, "JWT")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u42",
		"role": "admin",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	f.env["ADMINPANEL_TOKEN"] = "Bearer " + tok

	r = f.run("whoami")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "JWT")
	assert.Contains(t, r.out, "u42")
	assert.Contains(t, r.out, "admin")
	assert.Contains(t, r.out, "env")
	assert.NotContains(t, r.out, tok, "token is masked")
}

func TestParseFlagsInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	kind := fs.String("type", "", "")
	pos, err := parseFlags(fs, []string{"desk", "--type", "items", "lamp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"desk", "lamp"}, pos)
	assert.Equal(t, "items", *kind)

	_, err = parseFlags(fs, []string{"--bogus"})
	assert.Error(t, err)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcdef...wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestOpenStore(t *testing.T) {
	e := &env{opt: Options{}}
	e.opt.defaults()

	dir := t.TempDir()
	st, err := e.openStore(config.SessionConfig{Backend: config.BackendFile, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session.json"), e.location)
	require.NoError(t, st.Set(context.Background(), store.KeyToken, "t"))

	mr := miniredis.RunT(t)
	st, err = e.openStore(config.SessionConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr(), RedisPrefix: "ap:"})
	require.NoError(t, err)
	require.NoError(t, st.Set(context.Background(), store.KeyToken, "t"))
	got, err := mr.Get("ap:token")
	require.NoError(t, err)
	assert.Equal(t, "t", got)
	assert.Len(t, e.closers, 1)
	e.close()

	_, err = e.openStore(config.SessionConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.Equal(t, "memory", e.location)
}

func TestLogoutWithEnvTokenHints(t *testing.T) {
	f := newFixture(t)
	f.env["ADMINPANEL_TOKEN"] = "abc"

	r := f.run("logout")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "logged out")
	assert.Contains(t, r.out, "$ADMINPANEL_TOKEN")
}

func TestLogoutStoredTokenHasNoEnvHint(t *testing.T) {
	f := newFixture(t)
	f.loginAs("ann")

	r := f.run("logout")
	require.Equal(t, 0, r.code, r.err)
	assert.NotContains(t, r.out, "ADMINPANEL_TOKEN")
}

func TestShowIgnoresEarlierError(t *testing.T) {
	f := newFixture(t)
	f.loginAs("ann")
	opt := f.options()
	opt.defaults()
	ctx := context.Background()
	e, err := setup(ctx, opt)
	require.NoError(t, err)
	defer e.close()

	f.backend.Fail("GET", "/api/items", 500, "database unavailable")
	require.EqualError(t, e.show(ctx, app.PageItems), "database unavailable")

	f.backend.ClearFailures()
	assert.NoError(t, e.show(ctx, app.PageItems))
}

func TestLoginPromptsOnTerminal(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("ann", "password1", "ann@example.com")

	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		rd.Close()
		wr.Close()
	})

	var fd int
	opt := f.options()
	opt.Stdin = rd
	opt.IsTerminal = func(uintptr) bool { return true }
	opt.ReadPassword = func(n int) ([]byte, error) {
		fd = n
		return []byte("password1"), nil
	}

	r := f.runWith(opt, "login", "ann")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.err, "Password: ")
	assert.Equal(t, int(rd.Fd()), fd)
	assert.NotContains(t, r.out+r.err, "password1")
}

func TestPasswordFromPipeIsOneLine(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("ann", "password1", "ann@example.com")

	rd, wr, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { rd.Close() })
	_, err = wr.WriteString("password1\nignored\n")
	require.NoError(t, err)
	require.NoError(t, wr.Close())

	opt := f.options()
	opt.Stdin = rd
	opt.IsTerminal = func(uintptr) bool { return false }
	opt.ReadPassword = func(int) ([]byte, error) {
		t.Fatal("no terminal, no prompt")
		return nil, nil
	}

	r := f.runWith(opt, "login", "ann")
	require.Equal(t, 0, r.code, r.err)
	assert.NotContains(t, r.err, "Password:")
}

func TestAuditAndTags(t *testing.T) {
	f := newFixture(t)
	id := f.loginAs("ann")
	lamp := f.backend.AddItem("Desk lamp", "brass", 19.5, id)

	r := f.run("tag", "desk", "lighting")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, `"desk lighting" created`)

	r = f.run("tag", " ")
	assert.Equal(t, 2, r.code)
	assert.Contains(t, r.err, "Tag name is required")

	tag := f.backend.AddTag("brass", id)
	f.backend.TagItem(lamp.ID, tag.ID)
	r = f.run("tagged", tag.ID)
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "Desk lamp")
	assert.Contains(t, r.out, "$19.50")

	r = f.run("tagged", "missing")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.err, "Tag not found")

	r = f.run("add", "Chair", "80")
	require.Equal(t, 0, r.code, r.err)
	r = f.run("rm", lamp.ID)
	require.Equal(t, 0, r.code, r.err)

	r = f.run("audit", "--limit", "5")
	require.Equal(t, 0, r.code, r.err)
	assert.Contains(t, r.out, "delete")
	assert.Contains(t, r.out, "create")
	assert.Equal(t, "5", f.backend.LastRequest().Query.Get("limit"))
	assert.Equal(t, 2, f.backend.AuditCount())

	r = f.run("audit", "--limit", "-1")
	assert.Equal(t, 2, r.code)
}
