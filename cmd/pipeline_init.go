package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/daybrief/digest-cli/internal/feed"
	"github.com/daybrief/digest-cli/internal/fetcher"
	"github.com/daybrief/digest-cli/internal/pipeline"
	"github.com/daybrief/digest-cli/internal/scorer"
	"github.com/daybrief/digest-cli/internal/segment"
	"github.com/daybrief/digest-cli/internal/store"
	anthropicpkg "github.com/daybrief/digest-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized store, pipeline, and ranker shared by
// the fetch/process/feed/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Ranker   *feed.Ranker
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore connects to Postgres using the configured pool settings.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}

// initPipeline sets up the store, oracle client, configured sources, and
// the pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, command string) (*pipelineEnv, error) {
	if err := cfg.Validate(command); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	opts := fetcher.Options{
		Client:    httpClient(cfg.Fetch.TimeoutSecs),
		Limiter:   rate.NewLimiter(rate.Limit(cfg.Fetch.RequestsPerSec), 1),
		UserAgent: cfg.Fetch.UserAgent,
	}
	sources := pipeline.SourcesFromConfig(cfg.Sources, opts)

	oracle := anthropicpkg.NewClient(cfg.Anthropic.Key)
	engine := segment.NewEngine(oracle, st, cfg.Anthropic)
	sc := scorer.New(st, cfg.Process.ScoreWorkers)

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(st, sources, engine, sc, cfg.Process),
		Ranker:   feed.NewRanker(st, cfg.Feed.WindowDays, cfg.Feed.Limit),
	}, nil
}

func httpClient(timeoutSecs int) *http.Client {
	if timeoutSecs <= 0 {
		timeoutSecs = 30
	}
	return &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second}
}
