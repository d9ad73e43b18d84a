package executor

import (
	"context"
	"errors"
	"strings"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/conversation/intent"
	"drive-copilot-be/pkg/conversation/response"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/driveindex"
	"drive-copilot-be/pkg/store"
)

func (e *Executor) startMove(ctx context.Context, req Request, parsed *intent.Intent) Outcome {
	pending := e.States.StartMove(parsed.TargetFolder)
	if parsed.DocName == "" {
		return ask(pending, response.AskMoveSource(), constant.ConfirmationMoveSource)
	}
	return e.resolveSource(ctx, req.UserID, pending, parsed.DocName)
}

func (e *Executor) onMoveInitial(ctx context.Context, req Request, pending *store.PendingAction) Outcome {
	if declined(req) {
		return say(response.MoveCanceled())
	}
	name := strings.TrimSpace(req.Message)
	if name == "" {
		return ask(pending, response.AskMoveSource(), constant.ConfirmationMoveSource)
	}
	return e.resolveSource(ctx, req.UserID, pending, name)
}

// resolveSource looks up the file to move. Not found ends the flow; several
// matches keep asking for the source.
func (e *Executor) resolveSource(ctx context.Context, userID string, pending *store.PendingAction, name string) Outcome {
	source, err := e.lookup(ctx, userID, name)
	if err != nil {
		var ambiguous *driveindex.AmbiguousError
		if errors.As(err, &ambiguous) {
			initial := *pending
			initial.State = store.StateMoveInitial
			return ask(&initial, response.Ambiguous(ambiguous.Name, ambiguous.Paths), constant.ConfirmationMoveSource)
		}
		return Fail(err)
	}

	next := e.States.SourceResolved(pending, *source)
	if pending.TargetName == "" {
		return ask(next, response.AskMoveTarget(next.SourceDisplay), constant.ConfirmationMoveTarget)
	}

	target, err := e.lookup(ctx, userID, pending.TargetName)
	if err != nil || !target.IsFolder() {
		// The folder named up front is unusable; ask for it instead.
		return ask(next, response.AskMoveTarget(next.SourceDisplay), constant.ConfirmationMoveTarget)
	}
	confirm := e.States.TargetResolved(next, *target)
	return ask(confirm, response.ConfirmMove(confirm.SourceDisplay, confirm.TargetDisplay), constant.ConfirmationMoveConfirm)
}

func (e *Executor) onMoveTargetPending(ctx context.Context, req Request, pending *store.PendingAction) Outcome {
	if declined(req) {
		return say(response.MoveCanceled())
	}
	name := strings.TrimSpace(req.Message)
	if name == "" {
		return ask(pending, response.AskMoveTarget(pending.SourceDisplay), constant.ConfirmationMoveTarget)
	}

	target, err := e.lookup(ctx, req.UserID, name)
	if err != nil {
		var ambiguous *driveindex.AmbiguousError
		switch {
		case errors.As(err, &ambiguous):
			return ask(pending, response.Ambiguous(ambiguous.Name, ambiguous.Paths), constant.ConfirmationMoveTarget)
		case apperror.Is(err, apperror.KindNotFound):
			return ask(pending, response.TargetNotFound(name), constant.ConfirmationMoveTarget)
		default:
			return Fail(err)
		}
	}
	if !target.IsFolder() {
		return ask(pending, response.TargetNotFolder(target.DisplayName()), constant.ConfirmationMoveTarget)
	}

	next := e.States.TargetResolved(pending, *target)
	return ask(next, response.ConfirmMove(next.SourceDisplay, next.TargetDisplay), constant.ConfirmationMoveConfirm)
}

func (e *Executor) onMoveConfirmPending(ctx context.Context, req Request, pending *store.PendingAction) Outcome {
	switch {
	case confirmed(req):
		return e.moveFile(ctx, req.UserID, pending)
	case declined(req):
		return say(response.MoveCanceled())
	default:
		return Reparse()
	}
}

// moveFile issues the move once. There is no compensation if anything after
// it fails.
func (e *Executor) moveFile(ctx context.Context, userID string, pending *store.PendingAction) Outcome {
	source, target := pending.FileToMove, pending.TargetFolder
	if source.PrimaryParent() == target.ID {
		return say(response.AlreadyInFolder(pending.SourceDisplay, pending.TargetDisplay))
	}

	ws, err := e.connect(ctx, userID)
	if err != nil {
		return Fail(err)
	}
	if err := ws.MoveItem(ctx, source.ID, source.PrimaryParent(), target.ID); err != nil {
		return Fail(drive.Classify(err, "'"+pending.SourceDisplay+"'"))
	}

	e.Logger.Info(constant.ModuleDispatcher, "File moved", map[string]interface{}{
		"user_id":   userID,
		"file_id":   source.ID,
		"folder_id": target.ID,
	})
	e.scheduleRebuild(ctx, userID, constant.RebuildReasonMoved)
	return say(response.Moved(pending.SourceDisplay, pending.TargetDisplay))
}

// lookup ensures the index and resolves name against it.
func (e *Executor) lookup(ctx context.Context, userID, name string) (*drive.Item, error) {
	ws, err := e.connect(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := e.ensureIndex(ctx, userID, ws); err != nil {
		return nil, err
	}
	return e.Resolver.FindItemByName(ctx, userID, name)
}
