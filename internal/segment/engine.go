package segment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/daybrief/digest-cli/internal/config"
	"github.com/daybrief/digest-cli/internal/model"
	"github.com/daybrief/digest-cli/internal/resilience"
	"github.com/daybrief/digest-cli/internal/store"
	"github.com/daybrief/digest-cli/pkg/anthropic"
)

// Engine runs the deduplication/segmentation step: one oracle call per
// batch, response validation, index mapping, and a transactional commit.
type Engine struct {
	oracle anthropic.Client
	store  store.Store
	cfg    config.AnthropicConfig
}

// NewEngine creates a segmentation engine.
func NewEngine(oracle anthropic.Client, st store.Store, cfg config.AnthropicConfig) *Engine {
	return &Engine{oracle: oracle, store: st, cfg: cfg}
}

// Process segments one batch of unprocessed articles. An empty batch is a
// no-op success. On success every article in the batch is marked processed,
// whether or not the oracle linked it to a story. Any oracle or store
// failure leaves the batch fully untouched for retry on the next run.
// Returns the number of segments created.
func (e *Engine) Process(ctx context.Context, articles []model.Article) (int, error) {
	if len(articles) == 0 {
		zap.L().Info("segment: empty batch, nothing to process")
		return 0, nil
	}

	batch := NewBatch(articles)

	raw, err := e.callOracle(ctx, batch)
	if err != nil {
		return 0, err
	}

	result, err := ParseResponse(raw)
	if err != nil {
		return 0, err
	}

	segments, links := BuildSegments(batch, result)

	if err := e.store.CommitSegmentation(ctx, batch.IDs(), segments, links); err != nil {
		return 0, eris.Wrap(err, "segment: commit batch")
	}

	zap.L().Info("segment: batch committed",
		zap.Int("articles", batch.Len()),
		zap.Int("segments", len(segments)),
		zap.Int("links", len(links)),
	)
	return len(segments), nil
}

// callOracle issues the single segmentation request with the configured
// deadline and transient-error retry. The oracle call itself has no
// cancellation contract, so the timeout lives here.
func (e *Engine) callOracle(ctx context.Context, batch Batch) (string, error) {
	timeout := time.Duration(e.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	retryCfg := resilience.DefaultRetryConfig()
	if e.cfg.MaxAttempts > 0 {
		retryCfg.MaxAttempts = e.cfg.MaxAttempts
	}
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "segment")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return e.oracle.CreateMessage(callCtx, anthropic.MessageRequest{
			Model:     e.cfg.Model,
			MaxTokens: e.cfg.MaxTokens,
			System:    SystemPrompt(model.AllTopics()),
			Messages: []anthropic.Message{
				{Role: "user", Content: batch.Serialize()},
			},
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "segment: oracle call")
	}

	return anthropic.ExtractText(resp), nil
}

// BuildSegments turns a validated oracle result into segment and link
// records for the given batch. For every segment at output position j,
// every declared article index i yields one i→j link; indices outside the
// batch bounds are skipped with a warning rather than failing the batch.
// Source URLs and names are resolved positionally from the valid indices,
// aligned with each other.
func BuildSegments(batch Batch, result *OracleResult) ([]model.Segment, []model.ArticleSegmentLink) {
	now := time.Now().UTC()
	segments := make([]model.Segment, 0, len(result.Segments))
	var links []model.ArticleSegmentLink

	for j, os := range result.Segments {
		seg := model.Segment{
			ID:              uuid.New().String(),
			Title:           os.Title,
			Summary:         os.Summary,
			Content:         os.Content,
			Topics:          os.Topics,
			ImportanceScore: os.ImportanceScore,
			CreatedAt:       now,
		}

		for _, i := range os.SourceIndices {
			article, ok := batch.Article(i)
			if !ok {
				zap.L().Warn("segment: oracle referenced article index outside batch",
					zap.Int("segment", j),
					zap.Int("index", i),
					zap.Int("batch_size", batch.Len()),
				)
				continue
			}
			seg.SourceURLs = append(seg.SourceURLs, article.URL)
			seg.SourceNames = append(seg.SourceNames, article.Source)
			links = append(links, model.ArticleSegmentLink{
				ArticleID: article.ID,
				SegmentID: seg.ID,
			})
		}

		segments = append(segments, seg)
	}

	return segments, links
}
