package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/adminpanel/internal/app"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := max(msg.Height-14, 3)
		m.users.SetHeight(h)
		m.items.SetHeight(h)
		m.help.Width = msg.Width
		return m, nil

	case navigatedMsg:
		m.busy = false
		m.syncTables()
		return m, tea.Batch(m.focusForPage(), m.expireLater())

	case doneMsg:
		return m.handleDone(msg)

	case editLoadedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.expireLater()
		}
		f, ok := m.app.EditForm()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.itemForm.setValues(f.Name, f.Description, f.Price)
		return m, m.itemForm.focusAt(0)

	case redirectMsg:
		// the user may have moved on while the timer ran
		if m.app.Current() != app.PageRegister {
			return m, nil
		}
		return m, m.navigate(msg.page)

	case expireMsg:
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.pageKind() {
		case kindAuthForm:
			return m.updateAuthForm(msg)
		case kindItemForm:
			return m.updateItemForm(msg)
		case kindConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	// cursor blink and other widget ticks
	return m.forward(msg)
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.pageKind() {
	case kindAuthForm:
		if m.app.Current() == app.PageRegister {
			m.register, cmd = m.register.update(msg)
		} else {
			m.login, cmd = m.login.update(msg)
		}
	case kindItemForm:
		m.itemForm, cmd = m.itemForm.update(msg)
	}
	return m, cmd
}

func (m Model) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.syncTables()
	cmds := []tea.Cmd{m.expireLater()}

	if msg.err == nil {
		switch msg.action {
		case actLogin:
			m.login.reset()
			m.login.blur()
		case actRegister:
			m.register.reset()
			cmds = append(cmds, m.tick(app.RegisterRedirectDelay, func(time.Time) tea.Msg {
				return redirectMsg{page: app.PageLogin}
			}))
		case actCreate, actUpdate:
			m.mode = modeBrowse
			m.itemForm.reset()
			m.itemForm.blur()
		}
	}
	if msg.action == actDelete {
		m.mode = modeBrowse
		m.deleteID = ""
	}
	if msg.action == actLogin || msg.action == actLogout {
		cmds = append(cmds, m.focusForPage())
	}
	return m, tea.Batch(cmds...)
}

// focusForPage puts the cursor in the first field of an auth form.
func (m *Model) focusForPage() tea.Cmd {
	switch m.app.Current() {
	case app.PageLogin:
		m.register.blur()
		return m.login.focusAt(m.login.focus)
	case app.PageRegister:
		m.login.blur()
		return m.register.focusAt(m.register.focus)
	}
	m.login.blur()
	m.register.blur()
	return nil
}

func (m Model) updateAuthForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	onRegister := m.app.Current() == app.PageRegister
	f := &m.login
	if onRegister {
		f = &m.register
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		target := app.PageRegister
		if onRegister {
			target = app.PageLogin
		}
		m.app.Navigate(m.ctx, target)
		return m, m.focusForPage()
	case key.Matches(msg, m.keys.FieldNext):
		return m, f.next()
	case key.Matches(msg, m.keys.FieldPrev):
		return m, f.prev()
	case key.Matches(msg, m.keys.Submit):
		if !f.onLast() {
			return m, f.next()
		}
		if m.busy {
			return m, nil
		}
		m.busy = true
		v := f.values()
		if onRegister {
			return m, m.run(actRegister, func(ctx context.Context) error {
				return m.app.Register(ctx, v[0], v[1], v[2])
			})
		}
		return m, m.run(actLogin, func(ctx context.Context) error {
			return m.app.Login(ctx, v[0], v[1])
		})
	}
	return m.forward(msg)
}

func (m Model) updateItemForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.mode == modeEdit {
			m.app.CloseEdit()
		}
		m.mode = modeBrowse
		m.itemForm.reset()
		m.itemForm.blur()
		return m, nil
	case key.Matches(msg, m.keys.FieldNext):
		return m, m.itemForm.next()
	case key.Matches(msg, m.keys.FieldPrev):
		return m, m.itemForm.prev()
	case key.Matches(msg, m.keys.Submit):
		if !m.itemForm.onLast() {
			return m, m.itemForm.next()
		}
		if m.busy {
			return m, nil
		}
		m.busy = true
		v := m.itemForm.values()
		form := app.ItemForm{Name: v[0], Description: v[1], Price: v[2]}
		if m.mode == modeEdit {
			if open, ok := m.app.EditForm(); ok {
				form.ID = open.ID
			}
			return m, m.run(actUpdate, func(ctx context.Context) error {
				return m.app.UpdateItem(ctx, form)
			})
		}
		return m, m.run(actCreate, func(ctx context.Context) error {
			return m.app.CreateItem(ctx, form)
		})
	}
	return m.forward(msg)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		if m.busy {
			return m, nil
		}
		m.busy = true
		id := m.deleteID
		return m, m.run(actDelete, func(ctx context.Context) error {
			return m.app.DeleteItem(ctx, id)
		})
	case key.Matches(msg, m.keys.No):
		m.mode = modeBrowse
		m.deleteID = ""
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nav := m.app.Nav()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logout):
		m.busy = true
		return m, m.run(actLogout, m.app.Logout)
	case key.Matches(msg, m.keys.Next):
		return m.startNavigate(neighbour(nav, 1))
	case key.Matches(msg, m.keys.Prev):
		return m.startNavigate(neighbour(nav, -1))
	case key.Matches(msg, m.keys.Reload):
		return m.startNavigate(m.app.Current())
	}
	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(nav) {
		return m.startNavigate(nav[n-1].Page)
	}

	if m.app.Current() != app.PageItems {
		if m.app.Current() == app.PageUsers {
			var cmd tea.Cmd
			m.users, cmd = m.users.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		return m, m.itemForm.reset()
	case key.Matches(msg, m.keys.Edit):
		id, ok := m.selectedItemID()
		if !ok || m.busy {
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			return editLoadedMsg{err: m.app.EditItem(m.ctx, id)}
		}
	case key.Matches(msg, m.keys.Del):
		id, ok := m.selectedItemID()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.deleteID = id
		return m, nil
	}
	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m Model) startNavigate(p app.Page) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.mode = modeBrowse
	return m, m.navigate(p)
}

// neighbour returns the nav page step positions away from the active one.
func neighbour(nav []app.NavLink, step int) app.Page {
	if len(nav) == 0 {
		return app.PageLogin
	}
	idx := 0
	for i, l := range nav {
		if l.Active {
			idx = i
			break
		}
	}
	idx = ((idx+step)%len(nav) + len(nav)) % len(nav)
	return nav[idx].Page
}
