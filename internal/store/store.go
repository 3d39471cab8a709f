package store

import (
	"context"
	"time"

	"github.com/daybrief/digest-cli/internal/model"
)

// Store defines the persistence interface for the ingestion-to-ranking
// pipeline.
type Store interface {
	// Raw articles
	UpsertArticles(ctx context.Context, articles []model.Article) (inserted int, err error)
	ListUnprocessedArticles(ctx context.Context, since time.Time, limit int) ([]model.Article, error)

	// Segmentation. CommitSegmentation runs in one transaction: segment
	// inserts (order preserved), link inserts, then the processed flip for
	// every article in the batch.
	CommitSegmentation(ctx context.Context, articleIDs []string, segments []model.Segment, links []model.ArticleSegmentLink) error
	// ListRecentSegments returns segments created at or after since, newest
	// first. limit <= 0 means no cap.
	ListRecentSegments(ctx context.Context, since time.Time, limit int) ([]model.Segment, error)

	// Users and interactions
	ListUsers(ctx context.Context) ([]model.UserPreferences, error)
	GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error)
	UpsertPreferences(ctx context.Context, prefs model.UserPreferences) error
	RecordInteraction(ctx context.Context, interaction model.UserInteraction) error
	ListInteractions(ctx context.Context, userID string) ([]model.UserInteraction, error)

	// Scores
	UpsertScores(ctx context.Context, scores []model.UserSegmentScore) error
	GetScores(ctx context.Context, userID string, segmentIDs []string) (map[string]float64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
