package session

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	storage := NewFileStorage(path)

	_, err := storage.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Set(ctx, "currentUser", `{"id":1}`))
	require.NoError(t, storage.Set(ctx, "other", "x"))

	got, err := NewFileStorage(path).Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, storage.Remove(ctx, "currentUser"))
	require.NoError(t, storage.Remove(ctx, "currentUser"))
	_, err = storage.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, ErrNotFound)

	other, err := storage.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "x", other)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err := NewFileStorage(path).Get(ctx, "currentUser")
	assert.ErrorContains(t, err, "decode")

	// A store over a corrupt file starts logged out.
	store := NewStore(ctx, NewFileStorage(path))
	assert.Nil(t, store.Current())
}
