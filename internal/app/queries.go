package app

import (
	"context"
	"errors"
	"strings"

	"github.com/idilsaglam/adminpanel/internal/model"
)

// The calls below back one-shot CLI commands. They share the token gate with
// Navigate but do not touch view state.

// User fetches one account.
func (a *App) User(ctx context.Context, id string) (model.User, error) {
	if err := a.requireAuth(); err != nil {
		return model.User{}, err
	}
	return a.api.User(ctx, id)
}

// Item fetches one item as a rendered row.
func (a *App) Item(ctx context.Context, id string) (ItemRow, error) {
	if err := a.requireAuth(); err != nil {
		return ItemRow{}, err
	}
	it, err := a.api.Item(ctx, id)
	if err != nil {
		return ItemRow{}, err
	}
	return a.itemRow(it), nil
}

// Search returns matching users and items as rendered rows.
func (a *App) Search(ctx context.Context, query, kind string) ([]UserRow, []ItemRow, error) {
	if err := a.requireAuth(); err != nil {
		return nil, nil, err
	}
	res, err := a.api.Search(ctx, query, kind)
	if err != nil {
		return nil, nil, err
	}
	users := make([]UserRow, 0, len(res.Users))
	for _, u := range res.Users {
		users = append(users, UserRow{ID: u.ID, Username: u.Username, Email: u.Email, Created: a.formatDate(u.CreatedAt)})
	}
	items := make([]ItemRow, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, a.itemRow(it))
	}
	return users, items, nil
}

// Analytics returns the backend snapshot, recomputing it first when refresh is set.
func (a *App) Analytics(ctx context.Context, refresh bool) (model.Analytics, error) {
	if err := a.requireAuth(); err != nil {
		return model.Analytics{}, err
	}
	if refresh {
		return a.api.RefreshAnalytics(ctx)
	}
	return a.api.Analytics(ctx)
}

// Ping checks the backend is reachable. No token needed.
func (a *App) Ping(ctx context.Context) (model.ServerInfo, error) {
	return a.api.Hello(ctx)
}

// ErrEmptyTagName mirrors the backend's validation so no request is sent.
var ErrEmptyTagName = errors.New("Tag name is required")

// CreateTag adds a tag and returns it.
func (a *App) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	if err := a.requireAuth(); err != nil {
		return model.Tag{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Tag{}, ErrEmptyTagName
	}
	return a.api.CreateTag(ctx, name)
}

// TagItems returns the items carrying a tag as rendered rows.
func (a *App) TagItems(ctx context.Context, id string) ([]ItemRow, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	items, err := a.api.TagItems(ctx, id)
	if err != nil {
		return nil, err
	}
	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, a.itemRow(it))
	}
	return rows, nil
}

// AuditRow is one rendered audit log entry.
type AuditRow struct {
	When     string
	Action   string
	Entity   string
	EntityID string
	UserID   string
	Details  string
}

// AuditLogs returns the newest entries first. limit <= 0 means the backend default.
func (a *App) AuditLogs(ctx context.Context, limit int) ([]AuditRow, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	logs, err := a.api.AuditLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]AuditRow, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, AuditRow{
			When:     l.Timestamp.In(a.loc).Format(DateLayout + " 15:04"),
			Action:   l.Action,
			Entity:   l.Entity,
			EntityID: l.EntityID,
			UserID:   l.UserID,
			Details:  l.Details,
		})
	}
	return rows, nil
}
