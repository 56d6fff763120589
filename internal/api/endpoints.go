package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/idilsaglam/adminpanel/internal/model"
)

// Login authenticates and persists the token and user through the session.
func (c *Client) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	var res model.LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.request(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return res, err
	}
	user := model.CurrentUser{ID: res.UserID, Username: res.Username}
	if err := c.session.Save(ctx, res.Token, user); err != nil {
		return res, fmt.Errorf("persist session: %w", err)
	}
	return res, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password, email string) (model.RegisterResult, error) {
	var res model.RegisterResult
	body := map[string]string{"username": username, "password": password, "email": email}
	err := c.request(ctx, http.MethodPost, "/auth/register", body, &res)
	return res, err
}

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.request(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) User(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := c.request(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &u)
	return u, err
}

func (c *Client) Items(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := c.request(ctx, http.MethodGet, "/items", nil, &items)
	return items, err
}

func (c *Client) Item(ctx context.Context, id string) (model.Item, error) {
	var it model.Item
	err := c.request(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, &it)
	return it, err
}

func (c *Client) CreateItem(ctx context.Context, in model.ItemInput) (model.Item, error) {
	var it model.Item
	err := c.request(ctx, http.MethodPost, "/items", in, &it)
	return it, err
}

func (c *Client) UpdateItem(ctx context.Context, id string, in model.ItemInput) (model.Item, error) {
	var it model.Item
	err := c.request(ctx, http.MethodPut, "/items/"+url.PathEscape(id), in, &it)
	return it, err
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil)
}

// Hello is a cheap liveness check that needs no token.
func (c *Client) Hello(ctx context.Context) (model.ServerInfo, error) {
	var info model.ServerInfo
	err := c.request(ctx, http.MethodGet, "/hello", nil, &info)
	return info, err
}

// Search queries users, items or both. kind is "users", "items" or "".
func (c *Client) Search(ctx context.Context, query, kind string) (model.SearchResults, error) {
	v := url.Values{}
	v.Set("q", query)
	if kind != "" {
		v.Set("type", kind)
	}
	endpoint := "/search?" + v.Encode()

	var res model.SearchResults
	var err error
	switch kind {
	case "users":
		err = c.request(ctx, http.MethodGet, endpoint, nil, &res.Users)
	case "items":
		err = c.request(ctx, http.MethodGet, endpoint, nil, &res.Items)
	default:
		err = c.request(ctx, http.MethodGet, endpoint, nil, &res)
	}
	return res, err
}

func (c *Client) Analytics(ctx context.Context) (model.Analytics, error) {
	var a model.Analytics
	err := c.request(ctx, http.MethodGet, "/analytics", nil, &a)
	return a, err
}

// RefreshAnalytics asks the backend to recompute before returning the snapshot.
func (c *Client) RefreshAnalytics(ctx context.Context) (model.Analytics, error) {
	var a model.Analytics
	err := c.request(ctx, http.MethodPost, "/analytics/refresh", nil, &a)
	return a, err
}

// CreateTag adds a tag owned by the current user.
func (c *Client) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	var t model.Tag
	err := c.request(ctx, http.MethodPost, "/tags", map[string]string{"name": name}, &t)
	return t, err
}

// TagItems lists the items carrying tag id.
func (c *Client) TagItems(ctx context.Context, id string) ([]model.Item, error) {
	var items []model.Item
	err := c.request(ctx, http.MethodGet, "/tags/"+url.PathEscape(id)+"/items", nil, &items)
	return items, err
}

// AuditLogs returns the most recent changes. A limit <= 0 leaves the
// backend default (50).
func (c *Client) AuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error) {
	endpoint := "/audit-logs"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	var logs []model.AuditLog
	err := c.request(ctx, http.MethodGet, endpoint, nil, &logs)
	return logs, err
}
