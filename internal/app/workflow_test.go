package app_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/adminpanel/internal/api"
	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/session"
	"github.com/idilsaglam/adminpanel/internal/store"
	"github.com/idilsaglam/adminpanel/internal/testutil"
)

// TestPanelWorkflow drives the panel against the fake backend the way a user would.
func TestPanelWorkflow(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	st := store.NewMemoryStore()
	sess := session.New(st, session.WithGetenv(func(string) string { return "" }))
	require.NoError(t, sess.Init(ctx))
	client, err := api.NewClient(api.Config{BaseURL: backend.URL()}, sess)
	require.NoError(t, err)
	a := app.New(client, sess, app.WithLocation(time.UTC))

	assert.Equal(t, app.PageLogin, a.Start(ctx))

	require.NoError(t, a.Register(ctx, "ann", "password1", "ann@example.com"))
	require.Error(t, a.Register(ctx, "ann", "password1", "ann@example.com"))
	msg, _ := a.Message(app.PageRegister)
	assert.Equal(t, "Username already taken", msg.Text)

	require.NoError(t, a.Login(ctx, "ann", "password1"))
	assert.Equal(t, app.PageDashboard, a.Current())
	tok, err := st.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	a.Navigate(ctx, app.PageItems)
	assert.Empty(t, a.Items())
	require.NoError(t, a.CreateItem(ctx, app.ItemForm{Name: "Lamp", Description: "desk", Price: "19.5"}))
	rows := a.Items()
	require.Len(t, rows, 1)
	assert.Equal(t, "$19.50", rows[0].Price)
	assert.Equal(t, "Bearer "+tok, backend.LastRequest().Authorization)

	backend.Fail(http.MethodDelete, "/api/items/"+rows[0].ID, http.StatusForbidden, "You don't have permission to delete this item")
	require.Error(t, a.DeleteItem(ctx, rows[0].ID))
	assert.Equal(t, rows, a.Items())
	backend.ClearFailures()

	require.NoError(t, a.DeleteItem(ctx, rows[0].ID))
	assert.Empty(t, a.Items())

	require.NoError(t, a.Logout(ctx))
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, app.PageLogin, a.Navigate(ctx, app.PageUsers))
}
