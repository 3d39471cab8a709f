// Package fetcher pulls raw articles from configured newsletter and RSS
// sources. Sources never surface errors: any network or parse failure is
// logged and degrades to an empty result, so one broken feed cannot abort
// an ingestion run.
package fetcher

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/daybrief/digest-cli/internal/model"
)

// Source produces normalized raw articles from one feed endpoint.
type Source interface {
	// Name identifies the source in article records and logs.
	Name() string

	// Fetch returns all articles currently visible on the feed. It never
	// returns an error; failures degrade to an empty slice.
	Fetch(ctx context.Context) []model.Article
}

// Options carries the shared HTTP client, outbound rate limiter, and
// User-Agent applied to every source.
type Options struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	UserAgent string
}

// DefaultOptions returns fetch options with a 30s timeout and 2 req/s
// outbound limit.
func DefaultOptions() Options {
	return Options{
		Client:    &http.Client{Timeout: 30 * time.Second},
		Limiter:   rate.NewLimiter(2, 2),
		UserAgent: "daybrief-digest/1.0",
	}
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// wait blocks on the shared limiter if one is configured.
func (o Options) wait(ctx context.Context) error {
	if o.Limiter == nil {
		return nil
	}
	return o.Limiter.Wait(ctx)
}

// FetchAll runs every source concurrently and flattens the results. The
// join is settle-all: the batch completes when the slowest source finishes,
// and a failing source contributes nothing without cancelling the others.
// Duplicate URLs across sources are expected; the store's unique-URL upsert
// resolves them.
func FetchAll(ctx context.Context, sources []Source) []model.Article {
	results := make([][]model.Article, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = src.Fetch(ctx)
		}()
	}
	wg.Wait()

	var all []model.Article
	for i, articles := range results {
		zap.L().Debug("fetcher: source settled",
			zap.String("source", sources[i].Name()),
			zap.Int("articles", len(articles)),
		)
		all = append(all, articles...)
	}

	zap.L().Info("fetcher: all sources settled",
		zap.Int("sources", len(sources)),
		zap.Int("articles", len(all)),
	)
	return all
}
