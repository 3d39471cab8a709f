// Package pipeline orchestrates the two scheduled phases: ingestion
// (fetch + store) and processing (segment + score).
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/daybrief/digest-cli/internal/config"
	"github.com/daybrief/digest-cli/internal/fetcher"
	"github.com/daybrief/digest-cli/internal/scorer"
	"github.com/daybrief/digest-cli/internal/segment"
	"github.com/daybrief/digest-cli/internal/store"
)

// FetchResult summarizes one ingestion run.
type FetchResult struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
}

// ProcessResult summarizes one processing run.
type ProcessResult struct {
	Processed int `json:"processed"`
	Segments  int `json:"segments"`
	Scores    int `json:"scores"`
}

// Pipeline wires the fetch, segmentation, and scoring stages over one store.
type Pipeline struct {
	store   store.Store
	sources []fetcher.Source
	engine  *segment.Engine
	scorer  *scorer.Scorer
	process config.ProcessConfig
}

// New assembles a pipeline.
func New(st store.Store, sources []fetcher.Source, engine *segment.Engine, sc *scorer.Scorer, process config.ProcessConfig) *Pipeline {
	return &Pipeline{
		store:   st,
		sources: sources,
		engine:  engine,
		scorer:  sc,
		process: process,
	}
}

// RunFetch pulls every configured source and upserts the results. Duplicate
// URLs are silently skipped by the store, so Inserted counts only articles
// new to this run.
func (p *Pipeline) RunFetch(ctx context.Context) (*FetchResult, error) {
	start := time.Now()
	zap.L().Info("pipeline: fetch started", zap.Int("sources", len(p.sources)))

	articles := fetcher.FetchAll(ctx, p.sources)

	inserted, err := p.store.UpsertArticles(ctx, articles)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: upsert articles")
	}

	zap.L().Info("pipeline: fetch finished",
		zap.Int("fetched", len(articles)),
		zap.Int("inserted", inserted),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &FetchResult{Fetched: len(articles), Inserted: inserted}, nil
}

// RunProcess segments the current window of unprocessed articles and
// recomputes user scores for the window's segments. With nothing to process
// it returns zero counts without calling the oracle.
func (p *Pipeline) RunProcess(ctx context.Context) (*ProcessResult, error) {
	start := time.Now()
	since := time.Now().UTC().Add(-time.Duration(p.process.WindowHours) * time.Hour)

	articles, err := p.store.ListUnprocessedArticles(ctx, since, p.process.BatchLimit)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list unprocessed")
	}
	zap.L().Info("pipeline: process started",
		zap.Int("articles", len(articles)),
		zap.Time("since", since),
	)
	if len(articles) == 0 {
		return &ProcessResult{}, nil
	}

	segmentCount, err := p.engine.Process(ctx, articles)
	if err != nil {
		return nil, err
	}

	scores, err := p.scoreWindow(ctx, since)
	if err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: process finished",
		zap.Int("processed", len(articles)),
		zap.Int("segments", segmentCount),
		zap.Int("scores", scores),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &ProcessResult{Processed: len(articles), Segments: segmentCount, Scores: scores}, nil
}

// scoreWindow rescores every segment created in the current window, not
// just this run's, so scores missed by an earlier failed run heal here.
func (p *Pipeline) scoreWindow(ctx context.Context, since time.Time) (int, error) {
	segments, err := p.store.ListRecentSegments(ctx, since, 0)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: list recent segments")
	}
	return p.scorer.ScoreSegments(ctx, segments)
}

// SourcesFromConfig builds fetch sources from configuration. Unknown source
// kinds are skipped with a warning.
func SourcesFromConfig(configs []config.SourceConfig, opts fetcher.Options) []fetcher.Source {
	sources := make([]fetcher.Source, 0, len(configs))
	for _, sc := range configs {
		switch sc.Kind {
		case "rss":
			sources = append(sources, fetcher.NewRSSSource(sc.Name, sc.URL, opts))
		case "newsletter":
			sources = append(sources, fetcher.NewNewsletterSource(sc.Name, sc.URL, opts))
		default:
			zap.L().Warn("pipeline: unknown source kind",
				zap.String("source", sc.Name),
				zap.String("kind", sc.Kind),
			)
		}
	}
	return sources
}
