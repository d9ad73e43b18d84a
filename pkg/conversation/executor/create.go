package executor

import (
	"context"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/pkg/conversation/intent"
	"drive-copilot-be/pkg/conversation/response"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/store"
)

const untitledDocument = "Untitled Document"

// startCreate never touches Google; creation always waits for confirmation.
func (e *Executor) startCreate(req Request, parsed *intent.Intent) Outcome {
	name := parsed.Name
	if name == "" {
		name = untitledDocument
	}
	pending := e.States.StartCreate(name, req.Message)
	return ask(pending, response.AskPreview(name), constant.ConfirmationPreviewGen)
}

func (e *Executor) onConfirmPreviewGen(ctx context.Context, req Request, pending *store.PendingAction) Outcome {
	switch {
	case req.SkipPreview:
		return e.createDocument(ctx, req.UserID, pending, "")
	case confirmed(req):
		return e.showPreview(ctx, pending)
	case declined(req):
		return say(response.CreateCanceled())
	default:
		return Reparse()
	}
}

func (e *Executor) onConfirmCreate(ctx context.Context, req Request, pending *store.PendingAction) Outcome {
	switch {
	case req.Regenerate:
		return e.showPreview(ctx, pending)
	case req.SkipPreview:
		return e.createDocument(ctx, req.UserID, pending, "")
	case confirmed(req):
		return e.createDocument(ctx, req.UserID, pending, pending.Preview)
	case declined(req):
		return say(response.CreateCanceled())
	default:
		return Reparse()
	}
}

func (e *Executor) showPreview(ctx context.Context, pending *store.PendingAction) Outcome {
	preview, err := e.Generator.Preview(ctx, pending.FileName, pending.OriginalMessage)
	if err != nil {
		return Fail(err)
	}
	next := e.States.PreviewReady(pending, preview)
	return ask(next, response.ShowPreview(next.FileName, preview), constant.ConfirmationCreateDoc)
}

// createDocument generates the body, then creates and fills the document.
// The create call is not retried.
func (e *Executor) createDocument(ctx context.Context, userID string, pending *store.PendingAction, outline string) Outcome {
	content, err := e.Generator.Content(ctx, pending.FileName, pending.OriginalMessage, outline)
	if err != nil {
		return Fail(err)
	}

	ws, err := e.connect(ctx, userID)
	if err != nil {
		return Fail(err)
	}

	doc, err := ws.CreateDocument(ctx, pending.FileName)
	if err != nil {
		return Fail(drive.Classify(err, "the new document"))
	}
	if err := ws.InsertText(ctx, doc.ID, content, 1); err != nil {
		e.Logger.Error(constant.ModuleDispatcher, "Document created but content insert failed", map[string]interface{}{
			"user_id": userID,
			"doc_id":  doc.ID,
			"error":   err,
		})
		return Fail(drive.Classify(err, "'"+pending.FileName+"'"))
	}

	e.Logger.Info(constant.ModuleDispatcher, "Document created", map[string]interface{}{
		"user_id": userID,
		"doc_id":  doc.ID,
	})
	e.scheduleRebuild(ctx, userID, constant.RebuildReasonCreated)

	return Complete(Reply{
		Message: response.DocumentCreated(pending.FileName),
		DocURL:  doc.URL,
	})
}
