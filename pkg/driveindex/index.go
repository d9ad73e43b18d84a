// Package driveindex keeps a per-user flat snapshot of the Drive tree with
// computed paths, so names can be resolved without listing Drive on every
// request.
package driveindex

import (
	"time"

	"drive-copilot-be/pkg/drive"
)

// Index is a complete snapshot of one user's Drive as of BuiltAt. It is only
// ever replaced as a whole.
type Index struct {
	UserID  string       `json:"user_id"`
	BuiltAt time.Time    `json:"built_at"`
	Items   []drive.Item `json:"items"`
}

type IndexStatus string

const (
	StatusReady   IndexStatus = "ready"
	StatusPending IndexStatus = "pending"
)

// Stale reports whether the index is older than ttl. A zero ttl never expires.
func (idx *Index) Stale(ttl time.Duration, now time.Time) bool {
	if idx == nil {
		return true
	}
	if ttl <= 0 {
		return false
	}
	return now.Sub(idx.BuiltAt) > ttl
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Items)
}
