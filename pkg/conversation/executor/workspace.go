package executor

import (
	"context"
	"time"

	"drive-copilot-be/pkg/drive"
)

// timedWorkspace gives every Google call its own deadline.
type timedWorkspace struct {
	inner   drive.Workspace
	timeout time.Duration
}

func (w *timedWorkspace) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.timeout)
}

func (w *timedWorkspace) ListChildren(ctx context.Context, folderID, pageToken string) (*drive.Page, error) {
	ctx, cancel := w.bound(ctx)
	defer cancel()
	return w.inner.ListChildren(ctx, folderID, pageToken)
}

func (w *timedWorkspace) ReadContent(ctx context.Context, item drive.Item) (string, error) {
	ctx, cancel := w.bound(ctx)
	defer cancel()
	return w.inner.ReadContent(ctx, item)
}

func (w *timedWorkspace) MoveItem(ctx context.Context, itemID, oldParentID, newParentID string) error {
	ctx, cancel := w.bound(ctx)
	defer cancel()
	return w.inner.MoveItem(ctx, itemID, oldParentID, newParentID)
}

func (w *timedWorkspace) CreateDocument(ctx context.Context, title string) (*drive.CreatedDocument, error) {
	ctx, cancel := w.bound(ctx)
	defer cancel()
	return w.inner.CreateDocument(ctx, title)
}

func (w *timedWorkspace) InsertText(ctx context.Context, docID, text string, index int64) error {
	ctx, cancel := w.bound(ctx)
	defer cancel()
	return w.inner.InsertText(ctx, docID, text, index)
}

func (w *timedWorkspace) ReplaceContent(ctx context.Context, docID, text string) error {
	ctx, cancel := w.bound(ctx)
	defer cancel()
	return w.inner.ReplaceContent(ctx, docID, text)
}
