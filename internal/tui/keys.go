package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next, Prev           key.Binding
	FieldNext, FieldPrev key.Binding
	Submit, Cancel       key.Binding
	Toggle               key.Binding
	Reload               key.Binding
	Add, Edit, Del       key.Binding
	Yes, No              key.Binding
	Logout               key.Binding
	Quit                 key.Binding
	ForceQuit            key.Binding

	page pageKind
}

type pageKind int

const (
	kindAuthForm pageKind = iota
	kindBrowse
	kindItems
	kindItemForm
	kindConfirm
)

func newKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev")),
		FieldNext: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		FieldPrev: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Toggle:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "login/register")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Del:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		No:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap for whatever the screen currently accepts.
func (k keyMap) ShortHelp() []key.Binding {
	switch k.page {
	case kindAuthForm:
		return []key.Binding{k.FieldNext, k.Submit, k.Toggle, k.ForceQuit}
	case kindItemForm:
		return []key.Binding{k.FieldNext, k.Submit, k.Cancel}
	case kindConfirm:
		return []key.Binding{k.Yes, k.No}
	case kindItems:
		return []key.Binding{k.Next, k.Add, k.Edit, k.Del, k.Reload, k.Logout, k.Quit}
	default:
		return []key.Binding{k.Next, k.Reload, k.Logout, k.Quit}
	}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
