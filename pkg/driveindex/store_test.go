package driveindex

import (
	"context"
	"os"
	"testing"
	"time"

	"drive-copilot-be/pkg/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	builtAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	index := &Index{
		UserID:  "user-1",
		BuiltAt: builtAt,
		Items: []drive.Item{
			{ID: "a", Name: "A", MimeType: drive.MimeDocument, Parents: []string{"root"}, Path: "A"},
			{ID: "b", Name: "B", MimeType: drive.MimeFolder, Parents: []string{"root"}, Path: "B"},
			{ID: "c", Name: "C", MimeType: drive.MimeDocument, Parents: []string{"b"}, Path: "B/C"},
		},
	}
	require.NoError(t, store.Save(ctx, index))

	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, index.Items, loaded.Items)
	assert.True(t, builtAt.Equal(loaded.BuiltAt))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "user-1.json", entries[0].Name())
}

func TestFileStore_AbsentIsNotAnError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	index, err := store.Load(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, index)

	ok, err := store.Exists(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SaveReplaces(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Index{UserID: "u", Items: []drive.Item{{ID: "1", Name: "old"}}}))
	require.NoError(t, store.Save(ctx, &Index{UserID: "u", Items: []drive.Item{{ID: "2", Name: "new"}}}))

	loaded, err := store.Load(ctx, "u")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "new", loaded.Items[0].Name)

	require.NoError(t, store.Delete(ctx, "u"))
	ok, err := store.Exists(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_RejectsUnsafeUserID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "..", "../etc", `a\b`} {
		_, err := store.Load(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidUserID, id)
	}
}

func TestIndex_Stale(t *testing.T) {
	now := time.Now()
	idx := &Index{BuiltAt: now.Add(-25 * time.Hour)}

	assert.True(t, idx.Stale(24*time.Hour, now))
	assert.False(t, idx.Stale(48*time.Hour, now))
	assert.False(t, idx.Stale(0, now))

	var missing *Index
	assert.True(t, missing.Stale(0, now))
}
