package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store ObjectStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.GetObject(ctx, "workouts")
	require.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, store.PutObject(ctx, "workouts", []byte(`[1]`)))
	got, err := store.GetObject(ctx, "workouts")
	require.NoError(t, err)
	require.Equal(t, `[1]`, string(got))

	require.NoError(t, store.PutObject(ctx, "workouts", []byte(`[2]`)))
	got, err = store.GetObject(ctx, "workouts")
	require.NoError(t, err)
	require.Equal(t, `[2]`, string(got))

	require.NoError(t, store.DeleteObject(ctx, "workouts"))
	_, err = store.GetObject(ctx, "workouts")
	require.ErrorIs(t, err, ErrObjectNotFound)

	// deleting twice is fine
	require.NoError(t, store.DeleteObject(ctx, "workouts"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesData(t *testing.T) {
	store := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, store.PutObject(context.Background(), "k", data))
	data[0] = 'z'

	got, err := store.GetObject(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStoreLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.PutObject(context.Background(), "workouts", []byte(`[]`)))
	data, err := os.ReadFile(filepath.Join(dir, "workouts.json"))
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", `a\b`} {
		require.ErrorIs(t, store.PutObject(context.Background(), key, nil), ErrInvalidKey, key)
	}
}
