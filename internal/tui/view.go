package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/ui"
)

func accentStyle() lipgloss.Style   { return ui.Current().Accent }
func mutedStyle() lipgloss.Style    { return ui.Current().Muted }
func selectedStyle() lipgloss.Style { return lipgloss.NewStyle().Bold(true).Reverse(true) }

var pageTitles = map[app.Page]string{
	app.PageLogin:     "Login",
	app.PageRegister:  "Register",
	app.PageDashboard: "Dashboard",
	app.PageUsers:     "Users",
	app.PageItems:     "Items",
}

func title(p app.Page) string {
	if t, ok := pageTitles[p]; ok {
		return t
	}
	return string(p)
}

func (m Model) View() string {
	t := ui.Current()
	cur := m.app.Current()

	var sections []string
	sections = append(sections, m.headerView(), m.navView(), "")

	switch cur {
	case app.PageLogin:
		sections = append(sections, t.Title.Render("Login"), m.login.view())
	case app.PageRegister:
		sections = append(sections, t.Title.Render("Create an account"), m.register.view())
	case app.PageDashboard:
		sections = append(sections, m.dashboardView())
	case app.PageUsers:
		sections = append(sections, m.users.View())
	case app.PageItems:
		sections = append(sections, m.itemsView())
	default:
		sections = append(sections, t.Muted.Render("nothing to show on "+string(cur)))
	}

	if line := m.messageView(cur); line != "" {
		sections = append(sections, "", line)
	}
	if m.busy {
		sections = append(sections, t.Pending.Render("loading…"))
	}

	keys := m.keys
	keys.page = m.pageKind()
	sections = append(sections, "", m.help.View(keys))

	return ui.PanelString(sections)
}

// headerView mirrors the top bar: app name and who is logged in.
func (m Model) headerView() string {
	t := ui.Current()
	left := t.Title.Render("Admin Panel")
	if u := m.app.CurrentUser(); u != nil && m.app.Authenticated() {
		return left + "  " + t.Muted.Render("signed in as ") + t.Accent.Render(u.Username)
	}
	return left
}

func (m Model) navView() string {
	t := ui.Current()
	nav := m.app.Nav()
	tabs := make([]string, 0, len(nav))
	for i, l := range nav {
		label := fmt.Sprintf("%d %s", i+1, title(l.Page))
		if l.Active {
			tabs = append(tabs, t.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, t.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) dashboardView() string {
	t := ui.Current()
	stats, loaded := m.app.Stats()
	users, items := "…", "…"
	if loaded {
		users, items = fmt.Sprint(stats.Users), fmt.Sprint(stats.Items)
	}
	card := func(label, value string) string {
		return lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.BorderColor).
			Padding(0, 2).
			Render(t.Muted.Render(label) + "\n" + t.Title.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card("Users", users), " ", card("Items", items))
}

func (m Model) itemsView() string {
	t := ui.Current()
	body := m.items.View()
	if len(m.itemRows) == 0 {
		body = t.Muted.Render("no items yet, press a to add one")
	}

	switch m.mode {
	case modeAdd, modeEdit:
		heading := "Add new item"
		if m.mode == modeEdit {
			heading = "Edit item"
		}
		modal := lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.BorderColor).
			Padding(0, 1).
			Render(t.Title.Render(heading) + "\n" + m.itemForm.view())
		body += "\n" + modal
	case modeConfirmDelete:
		name := m.deleteID
		for _, r := range m.itemRows {
			if r.ID == m.deleteID {
				name = r.Name
				break
			}
		}
		body += "\n" + t.Pending.Render(fmt.Sprintf("Are you sure you want to delete %q? (y/n)", name))
	}
	return body
}

func (m Model) messageView(p app.Page) string {
	msg, ok := m.app.Message(p)
	if !ok {
		return ""
	}
	t := ui.Current()
	if msg.Kind == app.KindError {
		return t.Error.Render(t.SymFail + " " + msg.Text)
	}
	return t.Success.Render(t.SymOK + " " + msg.Text)
}
