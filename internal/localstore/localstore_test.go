package localstore

import (
	"testing"

	"astro-admin-go/internal/db"
	"astro-admin-go/internal/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.ApplyEmbedded(database))
	return New(database)
}

func TestSetGetOverwrite(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("token", "one"))
	require.NoError(t, store.Set("token", "two"))

	value, err := store.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "two", value)
}

func TestClearSelectedKeys(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"token", "accessToken", "refreshToken", "user", "theme"} {
		require.NoError(t, store.Set(key, "v"))
	}

	require.NoError(t, store.Clear("token", "accessToken", "refreshToken", "user"))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"theme"}, keys)

	require.NoError(t, store.Clear())
	keys, err = store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("user", "{}"))
	require.NoError(t, store.Remove("user"))
	require.NoError(t, store.Remove("missing"))

	_, err := store.Get("user")
	assert.ErrorIs(t, err, ErrNotFound)
}
