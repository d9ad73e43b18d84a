package driveindex

import (
	"context"
	"sync"
	"testing"
	"time"

	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/drive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *FileStore) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewManager(store, newTestCrawler(), ttl, 0, logger.NewNopLogger()), store
}

func simpleTree() *fakeLister {
	return &fakeLister{pages: map[string][][]drive.Item{
		drive.RootFolderID: {{file("a", "A"), folder("b", "B")}},
		"b":                {{file("c", "C")}},
	}}
}

func TestManager_EnsureIndexBuildsOnceThenUsesCache(t *testing.T) {
	m, store := newTestManager(t, 24*time.Hour)
	lister := simpleTree()
	ctx := context.Background()

	status, err := m.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	first, err := m.EnsureIndex(ctx, "u1", lister)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "B/C"}, paths(first.Items))
	calls := lister.callCount()

	second, err := m.EnsureIndex(ctx, "u1", lister)
	require.NoError(t, err)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, calls, lister.callCount(), "fresh index must not be recrawled")

	stored, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Items, stored.Items)

	status, err = m.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, status)
}

func TestManager_RebuildsStaleIndex(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	lister := simpleTree()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }
	_, err := m.EnsureIndex(ctx, "u1", lister)
	require.NoError(t, err)
	calls := lister.callCount()

	m.now = func() time.Time { return now.Add(2 * time.Hour) }
	idx, err := m.EnsureIndex(ctx, "u1", lister)
	require.NoError(t, err)
	assert.Greater(t, lister.callCount(), calls)
	assert.True(t, idx.BuiltAt.Equal(now.Add(2*time.Hour)))
}

func TestManager_FailedCrawlKeepsPreviousIndex(t *testing.T) {
	m, _ := newTestManager(t, 0)
	ctx := context.Background()

	_, err := m.EnsureIndex(ctx, "u1", simpleTree())
	require.NoError(t, err)

	broken := simpleTree()
	broken.failOn = map[string]error{"b": assert.AnError}
	_, err = m.Refresh(ctx, "u1", broken)
	require.Error(t, err)

	idx, err := m.LoadIndex(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "B/C"}, paths(idx.Items))
}

func TestManager_ConcurrentRefreshSharesOneCrawl(t *testing.T) {
	m, _ := newTestManager(t, 0)
	lister := simpleTree()
	lister.delay = 50 * time.Millisecond

	built := 0
	var mu sync.Mutex
	m.OnBuilt(func(ctx context.Context, index *Index) {
		mu.Lock()
		built++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Refresh(context.Background(), "u1", lister)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Late joiners may start a second build once the first finished, but
	// never one per caller.
	assert.LessOrEqual(t, lister.callCount(), 4)
	assert.GreaterOrEqual(t, built, 1)
	assert.Less(t, built, 5)
}

func TestManager_CallerDeadlineStopsWaiting(t *testing.T) {
	m, _ := newTestManager(t, 0)
	lister := simpleTree()
	lister.delay = 2 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()
	idx, err := m.Refresh(ctx, "u1", lister)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestManager_BuildTimeoutAbortsCrawl(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	m := NewManager(store, newTestCrawler(), 0, 50*time.Millisecond, logger.NewNopLogger())

	lister := simpleTree()
	lister.delay = 2 * time.Second

	started := time.Now()
	_, err = m.Refresh(context.Background(), "u1", lister)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 500*time.Millisecond)

	idx, err := m.LoadIndex(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, idx, "a timed out build must not save a partial index")
}
