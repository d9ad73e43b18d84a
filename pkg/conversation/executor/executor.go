// Package executor runs the per-user conversation: it routes each message to
// the continuation of the pending action, or parses it as a new request.
package executor

import (
	"context"
	"strings"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/conversation/generator"
	"drive-copilot-be/pkg/conversation/intent"
	"drive-copilot-be/pkg/conversation/state"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/driveindex"
	"drive-copilot-be/pkg/store"
)

// ConversationStore holds per-user conversation state. Lock must be held for
// the whole turn.
type ConversationStore interface {
	Lock(userID string) func()
	GetPending(userID string) (*store.PendingAction, bool)
	SavePending(userID string, pending *store.PendingAction)
	ClearPending(userID string)
	History(userID string) []store.ChatTurn
	AppendHistory(userID string, turns ...store.ChatTurn)
	ActiveDocument(userID string) (*drive.Item, bool)
	SetActiveDocument(userID string, item drive.Item)
}

type IntentParser interface {
	Parse(ctx context.Context, message string) (*intent.Intent, error)
}

type TextGenerator interface {
	Preview(ctx context.Context, title, originalMessage string) (string, error)
	Content(ctx context.Context, topic, originalMessage, outline string) (string, error)
	Analyze(ctx context.Context, req generator.AnalyzeRequest) (string, error)
	Chat(ctx context.Context, message string, history []store.ChatTurn) (string, error)
}

type IndexEnsurer interface {
	EnsureIndex(ctx context.Context, userID string, lister drive.Lister) (*driveindex.Index, error)
}

type NameResolver interface {
	FindItemByName(ctx context.Context, userID, name string) (*drive.Item, error)
}

// RebuildScheduler asks for a background index rebuild after Drive changed.
type RebuildScheduler interface {
	ScheduleRebuild(ctx context.Context, userID, reason string)
}

// Request is one user message. Confirmation is nil when the client sent none.
type Request struct {
	UserID       string
	Message      string
	Confirmation *bool
	Regenerate   bool
	SkipPreview  bool
}

type Dependencies struct {
	Store     ConversationStore
	Parser    IntentParser
	Generator TextGenerator
	Connector drive.Connector
	Indexes   IndexEnsurer
	Resolver  NameResolver
	Rebuilds  RebuildScheduler
	States    *state.Manager
	Logger    logger.ILogger

	// GoogleTimeout bounds each Drive/Docs call. Zero means no deadline.
	GoogleTimeout time.Duration
}

type Executor struct {
	Dependencies
}

func NewExecutor(deps Dependencies) *Executor {
	if deps.States == nil {
		deps.States = state.NewManager(deps.Logger)
	}
	return &Executor{Dependencies: deps}
}

// Handle runs one conversational turn. Turns of the same user never overlap.
func (e *Executor) Handle(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperror.ErrAuthenticationRequired
	}

	unlock := e.Store.Lock(req.UserID)
	defer unlock()

	if pending, ok := e.Store.GetPending(req.UserID); ok {
		if err := pending.Validate(); err != nil {
			e.Logger.Warn(constant.ModuleDispatcher, "Discarding corrupt pending action", map[string]interface{}{
				"user_id": req.UserID,
				"error":   err.Error(),
			})
			e.Store.ClearPending(req.UserID)
		} else {
			out := e.continuePending(ctx, req, pending)
			if out.kind != outcomeReparse {
				return e.apply(req.UserID, pending.State, out)
			}
			e.Logger.Info(constant.ModuleDispatcher, "Ambiguous answer, treating as a new request", map[string]interface{}{
				"user_id": req.UserID,
				"state":   pending.State,
			})
			e.Store.ClearPending(req.UserID)
		}
	}

	return e.apply(req.UserID, "", e.start(ctx, req))
}

func (e *Executor) continuePending(ctx context.Context, req Request, pending *store.PendingAction) Outcome {
	switch pending.State {
	case store.StateConfirmPreviewGen:
		return e.onConfirmPreviewGen(ctx, req, pending)
	case store.StateConfirmCreate:
		return e.onConfirmCreate(ctx, req, pending)
	case store.StateMoveInitial:
		return e.onMoveInitial(ctx, req, pending)
	case store.StateMoveTargetPending:
		return e.onMoveTargetPending(ctx, req, pending)
	case store.StateMoveConfirmPending:
		return e.onMoveConfirmPending(ctx, req, pending)
	default:
		return Reparse()
	}
}

func (e *Executor) start(ctx context.Context, req Request) Outcome {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Fail(apperror.New(apperror.KindBadRequest, "Please type a message."))
	}

	parsed, err := e.Parser.Parse(ctx, message)
	if err != nil {
		e.Logger.Warn(constant.ModuleDispatcher, "Intent parse failed, falling back to chat", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return e.chat(ctx, req)
	}

	switch parsed.ActionToPerform {
	case intent.ActionCreateDoc:
		return e.startCreate(req, parsed)
	case intent.ActionMoveDoc:
		return e.startMove(ctx, req, parsed)
	case intent.ActionAnalyze:
		return e.analyze(ctx, req, parsed)
	default:
		return e.chat(ctx, req)
	}
}

func (e *Executor) apply(userID string, from store.PendingState, out Outcome) (*Reply, error) {
	switch out.kind {
	case outcomeContinue:
		e.Store.SavePending(userID, out.pending)
		return &out.reply, nil
	case outcomeComplete:
		e.Store.ClearPending(userID)
		return &out.reply, nil
	case outcomeFail:
		e.Store.ClearPending(userID)
		e.Logger.Error(constant.ModuleDispatcher, "Turn failed", map[string]interface{}{
			"user_id": userID,
			"state":   from,
			"kind":    apperror.KindOf(out.err),
			"error":   out.err,
		})
		return nil, out.err
	default:
		// Reparse is resolved in Handle.
		e.Store.ClearPending(userID)
		return nil, apperror.New(apperror.KindStateCorruption, "Something went wrong. Please send your message again.")
	}
}

// connect returns the user's Workspace wrapped with per-call deadlines.
func (e *Executor) connect(ctx context.Context, userID string) (drive.Workspace, error) {
	ws, err := e.Connector.Connect(ctx, userID)
	if err != nil {
		return nil, drive.Classify(err, "your Google account")
	}
	return &timedWorkspace{inner: ws, timeout: e.GoogleTimeout}, nil
}

// ensureIndex makes sure the index used by the resolver exists and is fresh.
func (e *Executor) ensureIndex(ctx context.Context, userID string, ws drive.Workspace) (*driveindex.Index, error) {
	index, err := e.Indexes.EnsureIndex(ctx, userID, ws)
	if err != nil {
		return nil, drive.Classify(err, "your Drive files")
	}
	return index, nil
}

func (e *Executor) scheduleRebuild(ctx context.Context, userID, reason string) {
	if e.Rebuilds != nil {
		e.Rebuilds.ScheduleRebuild(ctx, userID, reason)
	}
}

func confirmed(req Request) bool {
	return req.Confirmation != nil && *req.Confirmation
}

func declined(req Request) bool {
	return req.Confirmation != nil && !*req.Confirmation
}
