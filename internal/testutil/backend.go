// Package testutil provides an in-memory stand-in for the admin REST backend.
// It speaks the same envelope and routes so client code can be tested end to end.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/adminpanel/internal/model"
)

// RecordedRequest is what the backend saw for one call.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
	ContentType   string
}

type failure struct {
	status  int
	message string
	raw     string
}

// Backend is safe for concurrent use.
type Backend struct {
	srv *httptest.Server

	mu        sync.Mutex
	users     map[string]model.User
	passwords map[string]string
	items     map[string]model.Item
	tags      map[string]model.Tag
	audit     []model.AuditLog
	tokens    map[string]string
	failures  map[string]failure
	requests  []RecordedRequest
	seq       int
	now       time.Time
}

// NewBackend starts a backend that is shut down with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:     map[string]model.User{},
		passwords: map[string]string{},
		items:     map[string]model.Item{},
		tags:      map[string]model.Tag{},
		tokens:    map[string]string{},
		failures:  map[string]failure{},
		now:       time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	b.srv = httptest.NewServer(b.routes())
	t.Cleanup(b.srv.Close)
	return b
}

// URL is the API base URL, including the /api prefix.
func (b *Backend) URL() string { return b.srv.URL + "/api" }

// Fail makes every "METHOD /path" call answer with status and message until cleared.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// FailRaw answers with a non-JSON body.
func (b *Backend) FailRaw(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, raw: body}
}

// ClearFailures removes injected failures.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = map[string]failure{}
}

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// LastRequest returns the latest request, or the zero value.
func (b *Backend) LastRequest() RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}
	}
	return b.requests[len(b.requests)-1]
}

// AddUser seeds an account and returns it.
func (b *Backend) AddUser(username, password, email string) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, password, email)
}

func (b *Backend) addUserLocked(username, password, email string) model.User {
	b.seq++
	u := model.User{
		ID:        fmt.Sprintf("u%d", b.seq),
		Username:  username,
		Email:     email,
		Role:      "user",
		CreatedAt: b.now.Add(time.Duration(b.seq) * time.Hour),
	}
	b.users[u.ID] = u
	b.passwords[u.ID] = password
	return u
}

// AddItem seeds an item and returns it.
func (b *Backend) AddItem(name, description string, price float64, createdBy string) model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addItemLocked(model.ItemInput{Name: name, Description: description, Price: price}, createdBy)
}

func (b *Backend) addItemLocked(in model.ItemInput, createdBy string) model.Item {
	b.seq++
	it := model.Item{
		ID:          fmt.Sprintf("i%d", b.seq),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CreatedAt:   b.now.Add(time.Duration(b.seq) * time.Hour),
		CreatedBy:   createdBy,
	}
	b.items[it.ID] = it
	return it
}

// AddTag seeds a tag and returns it.
func (b *Backend) AddTag(name, createdBy string) model.Tag {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addTagLocked(name, createdBy)
}

func (b *Backend) addTagLocked(name, createdBy string) model.Tag {
	b.seq++
	t := model.Tag{
		ID:        fmt.Sprintf("t%d", b.seq),
		Name:      name,
		CreatedAt: b.now.Add(time.Duration(b.seq) * time.Hour),
		CreatedBy: createdBy,
	}
	b.tags[t.ID] = t
	return t
}

// TagItem attaches a tag to an item.
func (b *Backend) TagItem(itemID, tagID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it := b.items[itemID]
	it.Tags = append(it.Tags, tagID)
	b.items[itemID] = it
}

// AuditCount reports how many audit entries were recorded.
func (b *Backend) AuditCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.audit)
}

func (b *Backend) logLocked(action, entity, id, userID, details string) {
	b.seq++
	b.audit = append(b.audit, model.AuditLog{
		ID:        fmt.Sprintf("a%d", b.seq),
		Action:    action,
		Entity:    entity,
		EntityID:  id,
		UserID:    userID,
		Timestamp: b.now.Add(time.Duration(b.seq) * time.Hour),
		Details:   details,
	})
}

// TokenFor returns the token the backend issues for a user id.
func (b *Backend) TokenFor(userID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := "token-" + userID
	b.tokens[tok] = userID
	return tok
}

// ItemCount reports how many items are stored.
func (b *Backend) ItemCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Backend) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(b.record, b.injectFailures)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/hello", b.hello).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", b.register).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(b.auth)
	authed.HandleFunc("/users", b.listUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", b.getUser).Methods(http.MethodGet)
	authed.HandleFunc("/items", b.listItems).Methods(http.MethodGet)
	authed.HandleFunc("/items", b.createItem).Methods(http.MethodPost)
	authed.HandleFunc("/items/{id}", b.getItem).Methods(http.MethodGet)
	authed.HandleFunc("/items/{id}", b.updateItem).Methods(http.MethodPut)
	authed.HandleFunc("/items/{id}", b.deleteItem).Methods(http.MethodDelete)
	authed.HandleFunc("/search", b.search).Methods(http.MethodGet)
	authed.HandleFunc("/analytics", b.analytics).Methods(http.MethodGet)
	authed.HandleFunc("/analytics/refresh", b.analytics).Methods(http.MethodPost)
	authed.HandleFunc("/tags", b.createTag).Methods(http.MethodPost)
	authed.HandleFunc("/tags/{id}/items", b.tagItems).Methods(http.MethodGet)
	api.HandleFunc("/audit-logs", b.auditLogs).Methods(http.MethodGet)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if f.raw != "" {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.raw))
			return
		}
		respondError(w, f.status, f.message)
	})
}

func (b *Backend) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		tok, found := strings.CutPrefix(h, "Bearer ")
		if !found {
			respondError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}
		b.mu.Lock()
		uid, ok := b.tokens[tok]
		b.mu.Unlock()
		if !ok {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		r.Header.Set("X-User-ID", uid)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) hello(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, "API is working", map[string]string{"version": "1.0.0", "name": "aServ"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, u := range b.users {
		if u.Username == req.Username && b.passwords[id] == req.Password {
			tok := "token-" + id
			b.tokens[tok] = id
			respond(w, http.StatusOK, "Login successful", map[string]string{
				"token": tok, "user_id": id, "username": u.Username,
			})
			return
		}
	}
	respondError(w, http.StatusUnauthorized, "Invalid credentials")
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == req.Username {
			respondError(w, http.StatusConflict, "Username already taken")
			return
		}
	}
	u := b.addUserLocked(req.Username, req.Password, req.Email)
	respond(w, http.StatusCreated, "User created successfully", map[string]string{"user_id": u.ID})
}

func (b *Backend) listUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	respond(w, http.StatusOK, "Users retrieved", b.sortedUsersLocked())
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[mux.Vars(r)["id"]]
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respond(w, http.StatusOK, "User retrieved", u)
}

func (b *Backend) listItems(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	respond(w, http.StatusOK, "Items retrieved", b.sortedItemsLocked())
}

func (b *Backend) getItem(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[mux.Vars(r)["id"]]
	if !ok {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	respond(w, http.StatusOK, "Item retrieved", it)
}

func decodeItem(r *http.Request) (model.ItemInput, bool) {
	var in model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, false
	}
	return in, in.Name != "" && in.Price >= 0
}

func (b *Backend) createItem(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeItem(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid item data")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	it := b.addItemLocked(in, r.Header.Get("X-User-ID"))
	b.logLocked("create", "item", it.ID, it.CreatedBy, it.Name)
	respond(w, http.StatusCreated, "Item created", it)
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	it, exists := b.items[id]
	b.mu.Unlock()
	if !exists {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	in, ok := decodeItem(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid item data")
		return
	}
	if it.CreatedBy != r.Header.Get("X-User-ID") {
		respondError(w, http.StatusForbidden, "You don't have permission to update this item")
		return
	}
	it.Name, it.Description, it.Price = in.Name, in.Description, in.Price

	b.mu.Lock()
	b.items[id] = it
	b.logLocked("update", "item", id, it.CreatedBy, it.Name)
	b.mu.Unlock()
	respond(w, http.StatusOK, "Item updated", it)
}

func (b *Backend) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[id]
	if !ok {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	if it.CreatedBy != r.Header.Get("X-User-ID") {
		respondError(w, http.StatusForbidden, "You don't have permission to delete this item")
		return
	}
	delete(b.items, id)
	b.logLocked("delete", "item", id, it.CreatedBy, it.Name)
	respond(w, http.StatusOK, "Item deleted", nil)
}

func (b *Backend) createTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Tag name is required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.addTagLocked(req.Name, r.Header.Get("X-User-ID"))
	respond(w, http.StatusCreated, "Tag created", t)
}

func (b *Backend) tagItems(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tags[id]; !ok {
		respondError(w, http.StatusNotFound, "Tag not found")
		return
	}
	items := []model.Item{}
	for _, it := range b.sortedItemsLocked() {
		for _, t := range it.Tags {
			if t == id {
				items = append(items, it)
				break
			}
		}
	}
	respond(w, http.StatusOK, "Tag items retrieved", items)
}

// auditLogs answers newest first; limit defaults to 50.
func (b *Backend) auditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	logs := make([]model.AuditLog, 0, len(b.audit))
	for i := len(b.audit) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, b.audit[i])
	}
	respond(w, http.StatusOK, "Audit logs retrieved", logs)
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	users := []model.User{}
	for _, u := range b.sortedUsersLocked() {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, u)
		}
	}
	items := []model.Item{}
	for _, it := range b.sortedItemsLocked() {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Description), q) {
			items = append(items, it)
		}
	}

	switch r.URL.Query().Get("type") {
	case "users":
		respond(w, http.StatusOK, "Search results", users)
	case "items":
		respond(w, http.StatusOK, "Search results", items)
	default:
		respond(w, http.StatusOK, "Search results", map[string]any{"users": users, "items": items})
	}
}

func (b *Backend) analytics(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	respond(w, http.StatusOK, "Analytics retrieved", model.Analytics{
		TotalUsers: len(b.users),
		TotalItems: len(b.items),
		TotalTags:  len(b.tags),
		UpdatedAt:  b.now,
	})
}

func (b *Backend) sortedUsersLocked() []model.User {
	out := make([]model.User, 0, len(b.users))
	for _, u := range b.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (b *Backend) sortedItemsLocked() []model.Item {
	out := make([]model.Item, 0, len(b.items))
	for _, it := range b.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
