// Package tui is the interactive front end: a bubbletea program that renders
// the app view-model and turns key presses into its handlers.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/adminpanel/internal/app"
)

type itemMode int

const (
	modeBrowse itemMode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

type action int

const (
	actLogin action = iota
	actRegister
	actCreate
	actUpdate
	actDelete
	actLogout
)

// messages produced by commands
type (
	navigatedMsg struct{}
	doneMsg      struct {
		action action
		err    error
	}
	editLoadedMsg struct{ err error }
	redirectMsg   struct{ page app.Page }
	expireMsg     struct{}
)

// Model implements tea.Model on top of *app.App.
type Model struct {
	app  *app.App
	ctx  context.Context
	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	width, height int
	busy          bool

	login    form
	register form
	itemForm form
	mode     itemMode
	deleteID string

	users    table.Model
	items    table.Model
	itemRows []app.ItemRow

	keys keyMap
	help help.Model
}

// New builds the model. ctx bounds every backend call the UI makes.
func New(ctx context.Context, a *app.App) Model {
	m := Model{
		app:  a,
		ctx:  ctx,
		tick: tea.Tick,
		login: newForm(
			field{label: "Username", placeholder: "admin", limit: 64},
			field{label: "Password", secret: true, limit: 128},
		),
		register: newForm(
			field{label: "Username", placeholder: "3-20 letters, digits or _", limit: 20},
			field{label: "Password", placeholder: "at least 8 characters", secret: true, limit: 128},
			field{label: "Email", placeholder: "you@example.com", limit: 254},
		),
		itemForm: newForm(
			field{label: "Name", placeholder: "Item name", limit: 200},
			field{label: "Description", placeholder: "Optional", limit: 1000},
			field{label: "Price", placeholder: "0.00", limit: 32},
		),
		users: newTable([]table.Column{
			{Title: "Username", Width: 20},
			{Title: "Email", Width: 30},
			{Title: "Created", Width: 12},
		}),
		items: newTable([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Description", Width: 36},
			{Title: "Price", Width: 12},
			{Title: "Created", Width: 12},
		}),
		keys: newKeyMap(),
		help: help.New(),
	}
	return m
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true)
	s.Selected = selectedStyle()
	t.SetStyles(s)
	return t
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(New(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.app.Start(m.ctx)
		return navigatedMsg{}
	}
}

// commands

func (m Model) navigate(p app.Page) tea.Cmd {
	return func() tea.Msg {
		m.app.Navigate(m.ctx, p)
		return navigatedMsg{}
	}
}

func (m Model) run(act action, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{action: act, err: fn(m.ctx)}
	}
}

func (m Model) expireLater() tea.Cmd {
	return m.tick(m.app.MessageTTL(), func(time.Time) tea.Msg { return expireMsg{} })
}

// syncTables copies the view-model rows into the table widgets.
func (m *Model) syncTables() {
	users := m.app.Users()
	urows := make([]table.Row, 0, len(users))
	for _, u := range users {
		urows = append(urows, table.Row{u.Username, u.Email, u.Created})
	}
	m.users.SetRows(urows)

	m.itemRows = m.app.Items()
	irows := make([]table.Row, 0, len(m.itemRows))
	for _, it := range m.itemRows {
		irows = append(irows, table.Row{it.Name, it.Description, it.Price, it.Created})
	}
	m.items.SetRows(irows)
	if c := m.items.Cursor(); c >= len(irows) && len(irows) > 0 {
		m.items.SetCursor(len(irows) - 1)
	}
}

func (m Model) selectedItemID() (string, bool) {
	c := m.items.Cursor()
	if c < 0 || c >= len(m.itemRows) {
		return "", false
	}
	return m.itemRows[c].ID, true
}

func (m Model) pageKind() pageKind {
	switch m.app.Current() {
	case app.PageLogin, app.PageRegister:
		return kindAuthForm
	case app.PageItems:
		switch m.mode {
		case modeAdd, modeEdit:
			return kindItemForm
		case modeConfirmDelete:
			return kindConfirm
		}
		return kindItems
	}
	return kindBrowse
}
