package model

import "time"

// User mirrors the backend user record. The password field is never sent to us.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is the domain model for a catalogue entry owned by the backend.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// ItemInput is the body for create and update calls.
type ItemInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// CurrentUser is what we keep about the logged-in account.
type CurrentUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResult is the data part of a successful /auth/login.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// RegisterResult is the data part of a successful /auth/register.
type RegisterResult struct {
	UserID string `json:"user_id"`
}

// ServerInfo is returned by /hello.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SearchResults holds whatever /search matched. Unused halves stay nil.
type SearchResults struct {
	Users []User `json:"users"`
	Items []Item `json:"items"`
}

// Analytics is the backend's aggregate snapshot.
type Analytics struct {
	TotalUsers       int       `json:"total_users"`
	TotalItems       int       `json:"total_items"`
	TotalCategories  int       `json:"total_categories"`
	TotalTags        int       `json:"total_tags"`
	RecentActivities []string  `json:"recent_activities"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Stats is what the dashboard shows.
type Stats struct {
	Users int
	Items int
}

// Tag labels items. Items carry tag ids in Item.Tags.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// AuditLog is one recorded change on the backend.
type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}
