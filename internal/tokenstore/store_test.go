package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.toml"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			token, err := store.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Empty(t, token)

			require.NoError(t, store.Set(KeyAuthToken, "abc"))
			require.NoError(t, store.Set(KeyRefreshToken, "r-1"))

			token, err = store.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Equal(t, "abc", token)

			require.NoError(t, store.Delete(KeyRefreshToken))
			refresh, err := store.Get(KeyRefreshToken)
			require.NoError(t, err)
			assert.Empty(t, refresh)

			require.NoError(t, store.Clear())
			token, err = store.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestStoreSetEmptyRemovesKey(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(KeyAuthToken, "abc"))
			require.NoError(t, store.Set(KeyAuthToken, ""))
			token, err := store.Get(KeyAuthToken)
			require.NoError(t, err)
			assert.Empty(t, token)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(KeyAuthToken, "persisted"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFileStore(path)
	require.NoError(t, err)
	token, err := second.Get(KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestFileStoreExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "farmdash", "session.toml"), store.Path())
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml {{{"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Get(KeyAuthToken)
	assert.Error(t, err)

	require.NoError(t, store.Clear())
	token, err := store.Get(KeyAuthToken)
	require.NoError(t, err)
	assert.Empty(t, token)
}
