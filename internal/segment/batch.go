package segment

import (
	"fmt"
	"strings"

	"github.com/daybrief/digest-cli/internal/model"
)

// Batch is an immutable snapshot of one processing run's articles. The
// position of an article in the batch is the only cross-reference the
// oracle contract uses, so the ordering is captured once here and shared
// by prompt construction and response mapping instead of relying on
// ambient slice order.
type Batch struct {
	articles []model.Article
}

// NewBatch captures the given articles in order.
func NewBatch(articles []model.Article) Batch {
	snapshot := make([]model.Article, len(articles))
	copy(snapshot, articles)
	return Batch{articles: snapshot}
}

// Len returns the number of articles in the batch.
func (b Batch) Len() int { return len(b.articles) }

// Empty reports whether the batch holds no articles.
func (b Batch) Empty() bool { return len(b.articles) == 0 }

// Article returns the article at batch position i.
func (b Batch) Article(i int) (model.Article, bool) {
	if i < 0 || i >= len(b.articles) {
		return model.Article{}, false
	}
	return b.articles[i], true
}

// IDs returns every article ID in batch order.
func (b Batch) IDs() []string {
	ids := make([]string, len(b.articles))
	for i, a := range b.articles {
		ids[i] = a.ID
	}
	return ids
}

// Serialize renders the batch as the indexed article list embedded in the
// oracle request: "[i] Source/Title/Content/URL" blocks in batch order.
func (b Batch) Serialize() string {
	blocks := make([]string, len(b.articles))
	for i, a := range b.articles {
		blocks[i] = fmt.Sprintf("[%d] Source: %s\nTitle: %s\nContent: %s\nURL: %s",
			i, a.Source, a.Title, a.Content, a.URL)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
