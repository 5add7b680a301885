package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTripAndCleanup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyToken, "abc"))
	require.NoError(t, store.Set(ctx, KeyUser, `{"id":"7"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, ok, err := NewFileStore(path).Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"7"}`, v)

	require.NoError(t, store.Delete(ctx, KeyToken, KeyUser, "missing"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	corrupt := func(t *testing.T) (string, *FileStore) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		return path, NewFileStore(path)
	}

	t.Run("get reports it", func(t *testing.T) {
		_, store := corrupt(t)
		_, _, err := store.Get(ctx, KeyToken)
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("delete removes it", func(t *testing.T) {
		path, store := corrupt(t)
		require.NoError(t, store.Delete(ctx, KeyToken, KeyUser))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("set overwrites it", func(t *testing.T) {
		_, store := corrupt(t)
		require.NoError(t, store.Set(ctx, KeyToken, "abc"))
		v, ok, err := store.Get(ctx, KeyToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc", v)
	})
}
