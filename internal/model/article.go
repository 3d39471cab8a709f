package model

import "time"

// Article is a raw item fetched from a single source feed. Articles are
// immutable after insertion except for the Processed flag, which the
// segmentation engine flips exactly once after a successful commit.
type Article struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	URL         string     `json:"url"` // unique key; sole ingestion-time dedup
	PublishedAt *time.Time `json:"published_at,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"`
	Processed   bool       `json:"processed"`
}
