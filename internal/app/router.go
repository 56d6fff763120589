package app

import "context"

// Page names one screen of the panel.
type Page string

const (
	PageLogin     Page = "login"
	PageRegister  Page = "register"
	PageDashboard Page = "dashboard"
	PageUsers     Page = "users"
	PageItems     Page = "items"
)

// Pages lists every known page in display order.
var Pages = []Page{PageLogin, PageRegister, PageDashboard, PageUsers, PageItems}

// Public reports whether the page is reachable without a token.
func (p Page) Public() bool { return p == PageLogin || p == PageRegister }

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Page   Page
	Active bool
}

// Navigate shows page and runs its loader. Without a token every page but
// login and register resolves to login. It returns the page actually shown.
func (a *App) Navigate(ctx context.Context, page Page) Page {
	if !a.sess.Authenticated() && !page.Public() {
		page = PageLogin
	}

	a.mu.Lock()
	a.current = page
	a.mu.Unlock()

	switch page {
	case PageDashboard:
		a.LoadDashboard(ctx)
	case PageUsers:
		a.LoadUsers(ctx)
	case PageItems:
		a.LoadItems(ctx)
	}
	return page
}

// Current is the page on screen.
func (a *App) Current() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Nav returns the links for the current auth state with the shown page marked.
func (a *App) Nav() []NavLink {
	pages := []Page{PageLogin, PageRegister}
	if a.sess.Authenticated() {
		pages = []Page{PageDashboard, PageUsers, PageItems}
	}
	cur := a.Current()
	out := make([]NavLink, 0, len(pages))
	for _, p := range pages {
		out = append(out, NavLink{Page: p, Active: p == cur})
	}
	return out
}
