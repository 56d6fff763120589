package keyringstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/idilsaglam/adminpanel/internal/store"
)

func TestStoreWithMockKeyring(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	s := New("")

	_, err := s.Get(ctx, store.KeyToken)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, store.KeyToken, "tok"))
	v, err := s.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	raw, err := keyring.Get(DefaultService, store.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", raw)

	require.NoError(t, s.Remove(ctx, store.KeyToken))
	require.NoError(t, s.Remove(ctx, store.KeyToken))
}
