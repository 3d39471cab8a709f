package fetcher

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/daybrief/digest-cli/internal/model"
)

// NewsletterSource fetches a hosted-newsletter publication. These platforms
// expose an RSS document at {baseURL}/feed rather than advertising a feed
// URL directly.
type NewsletterSource struct {
	name    string
	baseURL string
	opts    Options
}

// NewNewsletterSource creates a source for a hosted newsletter's base URL.
func NewNewsletterSource(name, baseURL string, opts Options) *NewsletterSource {
	return &NewsletterSource{name: name, baseURL: baseURL, opts: opts}
}

func (s *NewsletterSource) Name() string { return s.name }

// FeedURL returns the derived feed document location.
func (s *NewsletterSource) FeedURL() string {
	return strings.TrimRight(s.baseURL, "/") + "/feed"
}

func (s *NewsletterSource) Fetch(ctx context.Context) []model.Article {
	feedURL := s.FeedURL()
	feed, err := fetchFeed(ctx, feedURL, s.opts)
	if err != nil {
		zap.L().Warn("fetcher: newsletter fetch failed",
			zap.String("source", s.name),
			zap.String("url", feedURL),
			zap.Error(err),
		)
		return nil
	}
	return articlesFromFeed(s.name, feed)
}
