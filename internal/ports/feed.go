package ports

import (
	"context"
	"time"
)

// FeedFetcher pulls the latest batch of articles from a news source.
// Articles in a language the source's validator rejects are already dropped.
type FeedFetcher interface {
	Pull(ctx context.Context) ([]Article, error)
}

// Article is a news item as the pipeline sees it.
type Article struct {
	ID          string
	Title       string
	Text        string
	Link        string
	Language    string
	Keywords    []string
	Coins       []string // extracted from title and text
	Source      string
	PublishedAt time.Time
}
