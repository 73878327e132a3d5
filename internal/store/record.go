package store

import "time"

// VideoRecord is the durable catalog entry for one ingested video. It is
// written exactly once, after the stream package has been published, and
// never updated by the pipeline.
type VideoRecord struct {
	ID               string            `bson:"videoId" json:"videoId"`
	Title            string            `bson:"title" json:"title"`
	Description      string            `bson:"description,omitempty" json:"description,omitempty"`
	UserID           string            `bson:"userId" json:"userId"`
	VideoURLs        map[string]string `bson:"videoUrls" json:"videoUrls"`
	ThumbnailURL     *string           `bson:"thumbnailUrl" json:"thumbnailUrl"`
	OriginalFilename string            `bson:"originalFilename,omitempty" json:"originalFilename,omitempty"`
	// DurationSeconds is best-effort: zero when the source could not be probed.
	DurationSeconds float64   `bson:"duration" json:"duration"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
