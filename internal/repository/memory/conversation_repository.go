package memory

import (
	"sync"
	"time"

	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const (
	pendingPrefix = "pending:"
	historyPrefix = "history:"
	activePrefix  = "active:"
)

// ConversationRepository keeps the pending action, chat history and active
// document of every user in process memory. Records expire after a period of
// inactivity and are lost on restart.
type ConversationRepository struct {
	cache      *cache.Cache
	pendingTTL time.Duration
	historyTTL time.Duration
	maxHistory int

	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewConversationRepository(pendingTTL, historyTTL time.Duration, maxHistory int) *ConversationRepository {
	if pendingTTL <= 0 {
		pendingTTL = time.Hour
	}
	if historyTTL <= 0 {
		historyTTL = 24 * time.Hour
	}
	return &ConversationRepository{
		// Purges expired items every 10 minutes
		cache:      cache.New(historyTTL, 10*time.Minute),
		pendingTTL: pendingTTL,
		historyTTL: historyTTL,
		maxHistory: maxHistory,
		locks:      make(map[string]*userLock),
	}
}

// Lock serializes the turns of one user. The returned func releases it.
func (r *ConversationRepository) Lock(userID string) func() {
	r.mu.Lock()
	l, ok := r.locks[userID]
	if !ok {
		l = &userLock{}
		r.locks[userID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, userID)
		}
		r.mu.Unlock()
	}
}

func (r *ConversationRepository) GetPending(userID string) (*store.PendingAction, bool) {
	if x, found := r.cache.Get(pendingPrefix + userID); found {
		p := *x.(*store.PendingAction)
		return &p, true
	}
	return nil, false
}

func (r *ConversationRepository) SavePending(userID string, pending *store.PendingAction) {
	p := *pending
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.cache.Set(pendingPrefix+userID, &p, r.pendingTTL)
}

func (r *ConversationRepository) ClearPending(userID string) {
	r.cache.Delete(pendingPrefix + userID)
}

func (r *ConversationRepository) History(userID string) []store.ChatTurn {
	if x, found := r.cache.Get(historyPrefix + userID); found {
		turns := x.([]store.ChatTurn)
		out := make([]store.ChatTurn, len(turns))
		copy(out, turns)
		return out
	}
	return nil
}

// AppendHistory adds turns and keeps only the newest maxHistory of them.
func (r *ConversationRepository) AppendHistory(userID string, turns ...store.ChatTurn) {
	if len(turns) == 0 {
		return
	}
	history := append(r.History(userID), turns...)
	if r.maxHistory > 0 && len(history) > r.maxHistory {
		history = history[len(history)-r.maxHistory:]
	}
	r.cache.Set(historyPrefix+userID, history, r.historyTTL)
}

func (r *ConversationRepository) ActiveDocument(userID string) (*drive.Item, bool) {
	if x, found := r.cache.Get(activePrefix + userID); found {
		item := x.(drive.Item)
		return &item, true
	}
	return nil, false
}

func (r *ConversationRepository) SetActiveDocument(userID string, item drive.Item) {
	r.cache.Set(activePrefix+userID, item, r.historyTTL)
}

// Reset forgets everything about the user's conversation.
func (r *ConversationRepository) Reset(userID string) {
	r.cache.Delete(pendingPrefix + userID)
	r.cache.Delete(historyPrefix + userID)
	r.cache.Delete(activePrefix + userID)
}
