package model

import "time"

// Segment is a deduplicated news story synthesized from one or more raw
// articles by the oracle. Segments are created once per unique story per
// processing batch and never mutated; a story spanning multiple days yields
// multiple segments.
type Segment struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Content         string    `json:"content"`
	Topics          []string  `json:"topics"`
	ImportanceScore float64   `json:"importance_score"` // intrinsic significance, in [0,1]
	SourceURLs      []string  `json:"source_urls"`      // aligned with SourceNames by index
	SourceNames     []string  `json:"source_names"`
	CreatedAt       time.Time `json:"created_at"`
}

// ArticleSegmentLink records provenance between a raw article and a segment.
// One article may belong to zero or more segments; one segment aggregates at
// least one article. A link always references a segment produced in the same
// batch.
type ArticleSegmentLink struct {
	ArticleID string `json:"article_id"`
	SegmentID string `json:"segment_id"`
}
