package modelstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-intake-server/internal/domain"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	blob := []byte(`{"format":"symptom-model"}`)

	// Act
	require.NoError(t, store.Store(ctx, "disease-model", blob))
	got, err := store.Retrieve(ctx, "disease-model")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestFileStore_Overwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Store(ctx, "disease-model", []byte("old")))

	// Act
	require.NoError(t, store.Store(ctx, "disease-model", []byte("new")))

	// Assert
	got, err := store.Retrieve(ctx, "disease-model")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestFileStore_MissingBlob(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Retrieve(context.Background(), "nothing-here")

	assert.ErrorIs(t, err, domain.ErrBlobNotFound)
}

func TestFileStore_KeyCannotEscapeDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()

	// Act
	require.NoError(t, store.Store(ctx, "../escape/attempt", []byte("x")))

	// Assert: the blob landed inside the store directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".blob", filepath.Ext(entries[0].Name()))

	got, err := store.Retrieve(ctx, "../escape/attempt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestFileStore_CancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Store(ctx, "k", []byte("v")))
	_, err = store.Retrieve(ctx, "k")
	assert.Error(t, err)
}
