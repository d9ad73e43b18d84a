package driveindex

import (
	"context"
	"os"
	"testing"
	"time"

	"drive-copilot-be/pkg/drive"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a live Redis, e.g. REDIS_TEST_URL=redis://localhost:6379/15.
func TestRedisStore_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	store := NewRedisStore(rdb)
	userID := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), userID) })

	loaded, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	index := &Index{
		UserID:  userID,
		BuiltAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Items:   []drive.Item{{ID: "a", Name: "A", MimeType: drive.MimeDocument, Path: "A"}},
	}
	require.NoError(t, store.Save(ctx, index))

	exists, err := store.Exists(ctx, userID)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err = store.Load(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, index.Items, loaded.Items)

	require.NoError(t, store.Delete(ctx, userID))
	exists, err = store.Exists(ctx, userID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStore_RejectsUnsafeUserID(t *testing.T) {
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))

	_, err := store.Load(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), &Index{UserID: ""}))
}
