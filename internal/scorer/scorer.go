package scorer

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daybrief/digest-cli/internal/model"
	"github.com/daybrief/digest-cli/internal/store"
)

// Scorer recomputes per-user relevance scores for a set of segments. Users
// are scored concurrently; each user's failure is isolated so one bad read
// does not starve the rest of a batch run.
type Scorer struct {
	store   store.Store
	workers int
}

// New creates a scorer. workers bounds per-user concurrency.
func New(st store.Store, workers int) *Scorer {
	if workers <= 0 {
		workers = 8
	}
	return &Scorer{store: st, workers: workers}
}

// ScoreSegments computes one score per (user, segment) pair for every known
// user and writes all of them in a single bulk upsert. Users whose
// preference or interaction reads fail are skipped with a warning. Returns
// the number of score rows written.
func (s *Scorer) ScoreSegments(ctx context.Context, segments []model.Segment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "scorer: list users")
	}
	if len(users) == 0 {
		zap.L().Info("scorer: no users to score")
		return 0, nil
	}

	var (
		mu     sync.Mutex
		scores []model.UserSegmentScore
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, user := range users {
		g.Go(func() error {
			userScores, err := s.scoreUser(gctx, user, segments)
			if err != nil {
				zap.L().Warn("scorer: skipping user",
					zap.String("user_id", user.ID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			scores = append(scores, userScores...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, eris.Wrap(err, "scorer: score users")
	}

	if len(scores) == 0 {
		return 0, nil
	}
	if err := s.store.UpsertScores(ctx, scores); err != nil {
		return 0, eris.Wrap(err, "scorer: upsert scores")
	}

	zap.L().Info("scorer: scores written",
		zap.Int("users", len(users)),
		zap.Int("segments", len(segments)),
		zap.Int("scores", len(scores)),
	)
	return len(scores), nil
}

// scoreUser computes this user's score for every segment. The engagement
// variant applies only to segments the user has touched; everything else
// gets the batch-time blend.
func (s *Scorer) scoreUser(ctx context.Context, user model.UserPreferences, segments []model.Segment) ([]model.UserSegmentScore, error) {
	interactions, err := s.store.ListInteractions(ctx, user.ID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: list interactions")
	}

	now := time.Now().UTC()
	scores := make([]model.UserSegmentScore, 0, len(segments))
	for _, seg := range segments {
		var score float64
		if HasInteracted(seg.ID, interactions) {
			score = EngagementScore(seg, user.Topics, interactions)
		} else {
			score = BatchScore(seg, user.Topics)
		}
		scores = append(scores, model.UserSegmentScore{
			UserID:    user.ID,
			SegmentID: seg.ID,
			Score:     score,
			UpdatedAt: now,
		})
	}
	return scores, nil
}
