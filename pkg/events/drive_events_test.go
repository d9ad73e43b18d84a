package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDriveIndexBuilt(t *testing.T) {
	builtAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	evt := NewDriveIndexBuilt("user-1", 42, builtAt)

	assert.Equal(t, TypeDriveIndexBuilt, evt.EventType())
	assert.Equal(t, map[string]interface{}{
		"user_id":  "user-1",
		"items":    42,
		"built_at": "2024-05-01T03:00:00Z",
	}, evt.Payload())
	assert.False(t, evt.Timestamp().IsZero())
}
