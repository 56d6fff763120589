package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/adminpanel/internal/model"
)

// UserRow is one rendered line of the users table.
type UserRow struct {
	ID       string
	Username string
	Email    string
	Created  string
}

// ItemRow is one rendered line of the items table.
type ItemRow struct {
	ID          string
	Name        string
	Description string
	Price       string
	Created     string
}

// LoadDashboard refreshes the user and item counts.
func (a *App) LoadDashboard(ctx context.Context) {
	var users []model.User
	var items []model.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = a.api.Users(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = a.api.Items(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.flashError(PageDashboard, err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = model.Stats{Users: len(users), Items: len(items)}
	a.statsLoaded = true
}

// LoadUsers replaces the users table.
func (a *App) LoadUsers(ctx context.Context) {
	users, err := a.api.Users(ctx)
	if err != nil {
		a.flashError(PageUsers, err)
		return
	}
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Created:  a.formatDate(u.CreatedAt),
		})
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.users = rows
}

// LoadItems replaces the items table.
func (a *App) LoadItems(ctx context.Context) {
	items, err := a.api.Items(ctx)
	if err != nil {
		a.flashError(PageItems, err)
		return
	}
	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, a.itemRow(it))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = rows
}

func (a *App) itemRow(it model.Item) ItemRow {
	return ItemRow{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       FormatPrice(it.Price),
		Created:     a.formatDate(it.CreatedAt),
	}
}

// FormatPrice renders a price the way the items table shows it.
func FormatPrice(p float64) string { return fmt.Sprintf("$%.2f", p) }

func (a *App) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(a.loc).Format(DateLayout)
}

// Stats returns the dashboard counts and whether they were ever loaded.
func (a *App) Stats() (model.Stats, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats, a.statsLoaded
}

// Users returns a copy of the users table.
func (a *App) Users() []UserRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]UserRow(nil), a.users...)
}

// Items returns a copy of the items table.
func (a *App) Items() []ItemRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ItemRow(nil), a.items...)
}
