package fetcher

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/daybrief/digest-cli/internal/model"
)

// RSSSource fetches a syndication feed directly from its document URL.
type RSSSource struct {
	name    string
	feedURL string
	opts    Options
}

// NewRSSSource creates a source for a plain RSS/Atom feed URL.
func NewRSSSource(name, feedURL string, opts Options) *RSSSource {
	return &RSSSource{name: name, feedURL: feedURL, opts: opts}
}

func (s *RSSSource) Name() string { return s.name }

func (s *RSSSource) Fetch(ctx context.Context) []model.Article {
	feed, err := fetchFeed(ctx, s.feedURL, s.opts)
	if err != nil {
		zap.L().Warn("fetcher: rss fetch failed",
			zap.String("source", s.name),
			zap.String("url", s.feedURL),
			zap.Error(err),
		)
		return nil
	}
	return articlesFromFeed(s.name, feed)
}

// fetchFeed downloads and parses one feed document through the shared
// rate-limited client.
func fetchFeed(ctx context.Context, url string, opts Options) (*gofeed.Feed, error) {
	if err := opts.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return gofeed.NewParser().Parse(resp.Body)
}

// articlesFromFeed normalizes feed items into raw articles. Title defaults
// to "Untitled"; content prefers the item excerpt over the full body; a
// missing or unparseable date leaves PublishedAt nil.
func articlesFromFeed(source string, feed *gofeed.Feed) []model.Article {
	now := time.Now().UTC()
	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		title := item.Title
		if title == "" {
			title = "Untitled"
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}

		var publishedAt *time.Time
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			publishedAt = &t
		}

		articles = append(articles, model.Article{
			Source:      source,
			Title:       title,
			Content:     content,
			URL:         item.Link,
			PublishedAt: publishedAt,
			FetchedAt:   now,
		})
	}
	return articles
}
