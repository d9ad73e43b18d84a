package events

import "time"

const (
	TypeDriveIndexBuilt = "DRIVE_INDEX_BUILT"
)

// NewDriveIndexBuilt announces that a user's index was replaced.
func NewDriveIndexBuilt(userID string, items int, builtAt time.Time) Event {
	return BaseEvent{
		Type: TypeDriveIndexBuilt,
		Data: map[string]interface{}{
			"user_id":  userID,
			"items":    items,
			"built_at": builtAt.UTC().Format(time.RFC3339),
		},
		OccurredAt: time.Now(),
	}
}
