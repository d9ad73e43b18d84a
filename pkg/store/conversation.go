package store

import (
	"fmt"
	"time"

	"drive-copilot-be/pkg/drive"
)

// PendingState tags the step of a multi-turn action waiting for user input.
type PendingState string

const (
	StateConfirmPreviewGen  PendingState = "confirm_preview_gen"
	StateConfirmCreate      PendingState = "confirm_create"
	StateMoveInitial        PendingState = "moveDoc_initial"
	StateMoveTargetPending  PendingState = "moveDoc_target_pending"
	StateMoveConfirmPending PendingState = "moveDoc_confirm_pending"
)

// PendingAction is the per-user record of an in-progress confirmation flow.
// Only the fields of the current state are meaningful.
type PendingAction struct {
	State PendingState `json:"state"`

	// createDoc
	FileName        string `json:"file_name,omitempty"`
	OriginalMessage string `json:"original_message,omitempty"`
	Preview         string `json:"preview,omitempty"`

	// moveDoc
	DocName       string      `json:"doc_name,omitempty"`
	TargetName    string      `json:"target_name,omitempty"`
	FileToMove    *drive.Item `json:"file_to_move,omitempty"`
	TargetFolder  *drive.Item `json:"target_folder,omitempty"`
	SourceDisplay string      `json:"source_display,omitempty"`
	TargetDisplay string      `json:"target_display,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate reports a record that is missing a field its state depends on.
func (p *PendingAction) Validate() error {
	if p == nil {
		return fmt.Errorf("nil pending action")
	}
	switch p.State {
	case StateConfirmPreviewGen:
		if p.FileName == "" {
			return fmt.Errorf("%s: missing file_name", p.State)
		}
	case StateConfirmCreate:
		if p.FileName == "" {
			return fmt.Errorf("%s: missing file_name", p.State)
		}
		if p.Preview == "" {
			return fmt.Errorf("%s: missing preview", p.State)
		}
	case StateMoveInitial:
	case StateMoveTargetPending:
		if p.FileToMove == nil || p.FileToMove.ID == "" {
			return fmt.Errorf("%s: missing file_to_move", p.State)
		}
	case StateMoveConfirmPending:
		if p.FileToMove == nil || p.FileToMove.ID == "" {
			return fmt.Errorf("%s: missing file_to_move", p.State)
		}
		if p.TargetFolder == nil || p.TargetFolder.ID == "" {
			return fmt.Errorf("%s: missing target_folder", p.State)
		}
	default:
		return fmt.Errorf("unknown pending state %q", p.State)
	}
	return nil
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatTurn is one message of the rolling history fed back to the LLM.
type ChatTurn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}
