package dto

import (
	"time"

	"drive-copilot-be/pkg/drive"
)

// CrawlDriveMessage is the payload published on the crawl topic.
type CrawlDriveMessage struct {
	UserId      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type CacheStatusResponse struct {
	Status string `json:"status"`
}

type InitialContextResponse struct {
	UserId     string       `json:"user_id"`
	BuiltAt    time.Time    `json:"built_at"`
	DriveIndex []drive.Item `json:"drive_index"`
}
