package feed

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/daybrief/digest-cli/internal/model"
	"github.com/daybrief/digest-cli/internal/store"
)

// Feed combination weights.
const (
	combinedScoreWeight      = 0.6
	combinedImportanceWeight = 0.4
)

// Item is one ranked feed entry.
type Item struct {
	Segment       model.Segment `json:"segment"`
	Score         float64       `json:"score"`
	CombinedScore float64       `json:"combined_score"`
}

// Ranker produces a user's ordered feed from recent segments and stored
// personalization scores.
type Ranker struct {
	store      store.Store
	windowDays int
	limit      int
}

// NewRanker creates a feed ranker. windowDays and limit bound the segment
// selection window.
func NewRanker(st store.Store, windowDays, limit int) *Ranker {
	if windowDays <= 0 {
		windowDays = 7
	}
	if limit <= 0 {
		limit = 50
	}
	return &Ranker{store: st, windowDays: windowDays, limit: limit}
}

// Rank returns the user's feed: segments from the trailing window, each
// joined with the user's stored score (falling back to the segment's own
// importance for cold starts), sorted descending by the combined blend.
// The sort is stable so equal scores keep fetch order.
func (r *Ranker) Rank(ctx context.Context, userID string) ([]Item, error) {
	since := time.Now().UTC().AddDate(0, 0, -r.windowDays)

	segments, err := r.store.ListRecentSegments(ctx, since, r.limit)
	if err != nil {
		return nil, eris.Wrap(err, "feed: list recent segments")
	}
	if len(segments) == 0 {
		return []Item{}, nil
	}

	ids := make([]string, len(segments))
	for i, seg := range segments {
		ids[i] = seg.ID
	}
	scores, err := r.store.GetScores(ctx, userID, ids)
	if err != nil {
		return nil, eris.Wrap(err, "feed: get scores")
	}

	items := make([]Item, len(segments))
	for i, seg := range segments {
		score, ok := scores[seg.ID]
		if !ok {
			score = seg.ImportanceScore
		}
		items[i] = Item{
			Segment:       seg,
			Score:         score,
			CombinedScore: score*combinedScoreWeight + seg.ImportanceScore*combinedImportanceWeight,
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].CombinedScore > items[b].CombinedScore
	})

	zap.L().Debug("feed: ranked",
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
	)
	return items, nil
}
