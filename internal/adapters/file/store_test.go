package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/domino/internal/adapters/file"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements SnapshotStore
var _ ports.SnapshotStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "prefs", domain.From(domain.Values{"a": 1}).Snapshot()))

	_, err := os.Stat(filepath.Join(dir, "prefs.json"))
	require.NoError(t, err, "snapshot should be written as <id>.json")

	// Stray files are ignored by List
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"prefs"}, ids)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "does-not-exist"))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_InvalidIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	snap := domain.From(nil).Snapshot()

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		assert.ErrorIs(t, store.Save(ctx, id, snap), domain.ErrInvalidID, "Save(%q)", id)
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvalidID, "Load(%q)", id)
		assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrInvalidID, "Delete(%q)", id)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644))

	_, err := file.New(dir).Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".domino", "snapshots"), file.New("").BasePath)
}
