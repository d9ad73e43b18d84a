package state

import (
	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/store"
)

// Manager builds and advances pending actions. It never touches storage;
// the dispatcher persists whatever a handler returns.
type Manager struct {
	logger logger.ILogger
}

func NewManager(log logger.ILogger) *Manager {
	return &Manager{logger: log}
}

// StartCreate enters confirm_preview_gen.
func (m *Manager) StartCreate(fileName, originalMessage string) *store.PendingAction {
	p := &store.PendingAction{
		State:           store.StateConfirmPreviewGen,
		FileName:        fileName,
		OriginalMessage: originalMessage,
	}
	m.log(p)
	return p
}

// PreviewReady moves to (or stays in) confirm_create with a new preview.
func (m *Manager) PreviewReady(p *store.PendingAction, preview string) *store.PendingAction {
	next := *p
	next.State = store.StateConfirmCreate
	next.Preview = preview
	m.log(&next)
	return &next
}

// StartMove enters moveDoc_initial, waiting for the name of the file.
func (m *Manager) StartMove(targetName string) *store.PendingAction {
	p := &store.PendingAction{
		State:      store.StateMoveInitial,
		TargetName: targetName,
	}
	m.log(p)
	return p
}

// SourceResolved enters moveDoc_target_pending.
func (m *Manager) SourceResolved(p *store.PendingAction, source drive.Item) *store.PendingAction {
	next := *p
	next.State = store.StateMoveTargetPending
	next.DocName = source.Name
	next.FileToMove = &source
	next.SourceDisplay = source.DisplayName()
	m.log(&next)
	return &next
}

// TargetResolved enters moveDoc_confirm_pending.
func (m *Manager) TargetResolved(p *store.PendingAction, target drive.Item) *store.PendingAction {
	next := *p
	next.State = store.StateMoveConfirmPending
	next.TargetFolder = &target
	next.TargetDisplay = target.DisplayName()
	m.log(&next)
	return &next
}

func (m *Manager) log(p *store.PendingAction) {
	m.logger.Info(constant.ModuleState, "Transitioned to "+string(p.State), map[string]interface{}{
		"file_name":  p.FileName,
		"doc_name":   p.DocName,
		"has_target": p.TargetFolder != nil,
	})
}
