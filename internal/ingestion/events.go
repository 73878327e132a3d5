package ingestion

import "time"

// VideoIngestedEvent is emitted after a video's stream package has been
// published and its record persisted.
type VideoIngestedEvent struct {
	VideoID         string    `json:"video_id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	MasterURL       string    `json:"master_url"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}
