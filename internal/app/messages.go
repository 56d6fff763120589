package app

import "time"

// Kind styles a flash message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is a flash shown next to a page's form or table.
type Message struct {
	Text      string
	Kind      Kind
	ExpiresAt time.Time
}

func (a *App) flash(page Page, kind Kind, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages[page] = Message{Text: text, Kind: kind, ExpiresAt: a.now().Add(a.ttl)}
}

func (a *App) flashError(page Page, err error) {
	a.logger.Debug("flash error", "page", string(page), "error", err)
	a.flash(page, KindError, err.Error())
}

// Message returns the live flash for page, if any.
func (a *App) Message(page Page) (Message, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.messages[page]
	if !ok {
		return Message{}, false
	}
	if !a.now().Before(m.ExpiresAt) {
		delete(a.messages, page)
		return Message{}, false
	}
	return m, true
}

// DismissMessage hides the flash for page immediately.
func (a *App) DismissMessage(page Page) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.messages, page)
}
