package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/adminpanel/internal/api"
	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/session"
	"github.com/idilsaglam/adminpanel/internal/store"
	"github.com/idilsaglam/adminpanel/internal/testutil"
)

// ticks records scheduled timers instead of sleeping.
type ticks map[time.Duration]func(time.Time) tea.Msg

func (tk ticks) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	tk[d] = fn
	return nil
}

type harness struct {
	t       *testing.T
	m       Model
	app     *app.App
	backend *testutil.Backend
	ticks   ticks
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	sess := session.New(store.NewMemoryStore(), session.WithGetenv(func(string) string { return "" }))
	require.NoError(t, sess.Init(ctx))
	client, err := api.NewClient(api.Config{BaseURL: backend.URL()}, sess)
	require.NoError(t, err)
	a := app.New(client, sess, app.WithLocation(time.UTC))

	h := &harness{t: t, app: a, backend: backend, ticks: ticks{}}
	h.m = New(ctx, a)
	h.m.tick = h.ticks.tick
	h.send(h.m.Init()())
	return h
}

// send delivers msg and returns the follow-up command without running it.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// do delivers msg and runs the single command it produces, feeding the result back.
func (h *harness) do(msg tea.Msg) {
	h.t.Helper()
	cmd := h.send(msg)
	require.NotNil(h.t, cmd, "expected a command")
	h.send(cmd())
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func (h *harness) login(user, pass string) {
	h.typeText(user)
	h.send(tab)
	h.typeText(pass)
	h.do(enter)
}

func TestStartsOnLogin(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, app.PageLogin, h.app.Current())
	assert.Contains(t, h.m.View(), "Login")
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.login("ghost", "nope")

	assert.Equal(t, app.PageLogin, h.app.Current())
	assert.Contains(t, h.m.View(), "Invalid credentials")
}

func TestItemsWorkflow(t *testing.T) {
	h := newHarness(t)
	u := h.backend.AddUser("ann", "password1", "ann@example.com")
	h.backend.AddItem("Lamp", "desk lamp", 19.5, u.ID)
	h.backend.AddItem("Chair", "oak", 80, u.ID)

	h.login("ann", "password1")
	require.Equal(t, app.PageDashboard, h.app.Current())
	view := h.m.View()
	assert.Contains(t, view, "signed in as")
	assert.Contains(t, view, "ann")

	h.do(runes("3"))
	require.Equal(t, app.PageItems, h.app.Current())
	assert.Len(t, h.m.itemRows, 2)
	assert.Contains(t, h.m.View(), "$19.50")

	// delete the first row after confirming
	h.send(runes("d"))
	assert.Contains(t, h.m.View(), "Are you sure")
	h.do(runes("y"))
	assert.Len(t, h.m.itemRows, 1)
	assert.Equal(t, 1, h.backend.ItemCount())
	assert.Contains(t, h.m.View(), app.MsgItemGone)

	// add through the inline form
	h.send(runes("a"))
	h.typeText("Desk")
	h.send(tab)
	h.typeText("walnut")
	h.send(tab)
	h.typeText("42")
	h.do(enter)
	assert.Equal(t, modeBrowse, h.m.mode)
	assert.Len(t, h.m.itemRows, 2)
	assert.Contains(t, h.m.View(), "$42.00")

	// edit opens pre-filled and saves
	h.do(runes("e"))
	require.Equal(t, modeEdit, h.m.mode)
	assert.Equal(t, "Chair", h.m.itemForm.values()[0])
	h.send(tab)
	h.send(tab)
	h.do(enter)
	assert.Equal(t, modeBrowse, h.m.mode)
	assert.Contains(t, h.m.View(), app.MsgItemSaved)

	h.do(runes("L"))
	assert.Equal(t, app.PageLogin, h.app.Current())
	assert.False(t, h.app.Authenticated())
}

func TestRegisterRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, app.PageRegister, h.app.Current())

	h.typeText("bob")
	h.send(tab)
	h.typeText("password1")
	h.send(tab)
	h.typeText("bob@example.com")
	h.do(enter)
	assert.Contains(t, h.m.View(), app.MsgRegisterOK)

	fn, ok := h.ticks[app.RegisterRedirectDelay]
	require.True(t, ok, "redirect timer scheduled")
	h.do(fn(time.Now()))
	assert.Equal(t, app.PageLogin, h.app.Current())
}

func TestNeighbourWraps(t *testing.T) {
	nav := []app.NavLink{{Page: app.PageDashboard}, {Page: app.PageUsers}, {Page: app.PageItems, Active: true}}
	assert.Equal(t, app.PageDashboard, neighbour(nav, 1))
	assert.Equal(t, app.PageUsers, neighbour(nav, -1))
}
