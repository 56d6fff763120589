package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/adminpanel/internal/model"
	"github.com/idilsaglam/adminpanel/internal/store"
)

func noEnv(string) string { return "" }

func TestInitEmptyStore(t *testing.T) {
	s := New(store.NewMemoryStore(), WithGetenv(noEnv))
	require.NoError(t, s.Init(context.Background()))

	assert.False(t, s.Authenticated())
	assert.Nil(t, s.CurrentUser())
	assert.Equal(t, SourceNone, s.Source())
}

func TestSaveThenInitRestores(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	s := New(st, WithGetenv(noEnv))
	require.NoError(t, s.Save(ctx, "Bearer tok-1", model.CurrentUser{ID: "u1", Username: "ann"}))
	assert.Equal(t, "tok-1", s.Token())

	raw, err := st.Get(ctx, store.KeyCurrentUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","username":"ann"}`, raw)

	reloaded := New(st, WithGetenv(noEnv))
	require.NoError(t, reloaded.Init(ctx))
	assert.Equal(t, "tok-1", reloaded.Token())
	assert.Equal(t, SourceStore, reloaded.Source())
	assert.Equal(t, &model.CurrentUser{ID: "u1", Username: "ann"}, reloaded.CurrentUser())
}

func TestEnvOverride(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyToken, "stored"))

	s := New(st, WithGetenv(func(k string) string {
		if k == EnvToken {
			return "bearer from-env"
		}
		return ""
	}))
	require.NoError(t, s.Init(ctx))
	assert.Equal(t, "from-env", s.Token())
	assert.Equal(t, SourceEnv, s.Source())
}

func TestCorruptCurrentUserIsIgnored(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyToken, "tok"))
	require.NoError(t, st.Set(ctx, store.KeyCurrentUser, "not json"))

	s := New(st, WithGetenv(noEnv))
	require.NoError(t, s.Init(ctx))
	assert.True(t, s.Authenticated())
	assert.Nil(t, s.CurrentUser())
}

func TestClearRemovesEverything(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := New(st, WithGetenv(noEnv))
	require.NoError(t, s.Save(ctx, "tok", model.CurrentUser{ID: "u1", Username: "ann"}))

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.CurrentUser())
	assert.Equal(t, 0, st.Len())
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	s := New(store.NewMemoryStore(), WithGetenv(noEnv))
	assert.Error(t, s.Save(context.Background(), "  ", model.CurrentUser{}))
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc", StripBearer("Bearer abc"))
	assert.Equal(t, "abc", StripBearer("BEARER   abc"))
	assert.Equal(t, "abc", StripBearer("abc"))
}
