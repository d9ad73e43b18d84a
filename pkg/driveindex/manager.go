package driveindex

import (
	"context"
	"fmt"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/drive"

	"golang.org/x/sync/singleflight"
)

// BuiltHook is called after a fresh index has been persisted.
type BuiltHook func(ctx context.Context, index *Index)

// Manager owns the crawl-and-replace lifecycle of the per-user index.
// Concurrent builds for the same user share a single crawl.
type Manager struct {
	store        Store
	crawler      *Crawler
	ttl          time.Duration
	buildTimeout time.Duration
	group        singleflight.Group
	logger       logger.ILogger
	now          func() time.Time
	onBuilt      BuiltHook
}

// NewManager bounds every shared build by buildTimeout (zero disables it).
func NewManager(store Store, crawler *Crawler, ttl, buildTimeout time.Duration, log logger.ILogger) *Manager {
	return &Manager{
		store:        store,
		crawler:      crawler,
		ttl:          ttl,
		buildTimeout: buildTimeout,
		logger:       log,
		now:          time.Now,
	}
}

func (m *Manager) OnBuilt(hook BuiltHook) {
	m.onBuilt = hook
}

// EnsureIndex returns the stored index when it exists and is fresh, and
// otherwise rebuilds it with a full crawl.
func (m *Manager) EnsureIndex(ctx context.Context, userID string, lister drive.Lister) (*Index, error) {
	index, err := m.store.Load(ctx, userID)
	if err != nil {
		m.logger.Warn(constant.ModuleIndex, "Stored index unreadable, rebuilding", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		index = nil
	}

	if index != nil && !index.Stale(m.ttl, m.now()) {
		return index, nil
	}

	if index != nil {
		m.logger.Info(constant.ModuleIndex, "Index is stale, rebuilding", map[string]interface{}{
			"user_id":  userID,
			"built_at": index.BuiltAt,
		})
	}
	return m.rebuild(ctx, userID, lister)
}

// LoadIndex is a read-only lookup. A nil index means the user has not been
// crawled yet.
func (m *Manager) LoadIndex(ctx context.Context, userID string) (*Index, error) {
	return m.store.Load(ctx, userID)
}

// Refresh rebuilds unconditionally. A build already in flight is joined.
func (m *Manager) Refresh(ctx context.Context, userID string, lister drive.Lister) (*Index, error) {
	return m.rebuild(ctx, userID, lister)
}

func (m *Manager) Status(ctx context.Context, userID string) (IndexStatus, error) {
	ok, err := m.store.Exists(ctx, userID)
	if err != nil {
		return StatusPending, err
	}
	if ok {
		return StatusReady, nil
	}
	return StatusPending, nil
}

func (m *Manager) rebuild(ctx context.Context, userID string, lister drive.Lister) (*Index, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	ch := m.group.DoChan(userID, func() (interface{}, error) {
		// The shared build outlives whichever caller started it, but never
		// runs past buildTimeout.
		buildCtx := context.WithoutCancel(ctx)
		if m.buildTimeout > 0 {
			var cancel context.CancelFunc
			buildCtx, cancel = context.WithTimeout(buildCtx, m.buildTimeout)
			defer cancel()
		}
		return m.build(buildCtx, userID, lister)
	})

	select {
	case <-ctx.Done():
		m.logger.Warn(constant.ModuleIndex, "Stopped waiting for index build", map[string]interface{}{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			m.logger.Debug(constant.ModuleIndex, "Joined in-flight index build", map[string]interface{}{"user_id": userID})
		}
		return res.Val.(*Index), nil
	}
}

func (m *Manager) build(ctx context.Context, userID string, lister drive.Lister) (*Index, error) {
	started := m.now()
	m.logger.Info(constant.ModuleIndex, "Building drive index (full BFS)", map[string]interface{}{
		"user_id": userID,
	})

	items, err := m.crawler.Crawl(ctx, lister)
	if err != nil {
		return nil, err
	}

	index := &Index{
		UserID:  userID,
		BuiltAt: m.now(),
		Items:   items,
	}
	if err := m.store.Save(ctx, index); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	m.logger.Info(constant.ModuleIndex, "Drive index saved", map[string]interface{}{
		"user_id":  userID,
		"items":    len(items),
		"duration": m.now().Sub(started).String(),
	})
	if m.onBuilt != nil {
		m.onBuilt(ctx, index)
	}
	return index, nil
}
