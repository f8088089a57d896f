// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by ReportStore lookups for an unknown id.
var ErrNotFound = errors.New("not found")

// ReportStore persists sentiment reports.
// Concurrent calls are safe; writes are serialized by the adapter.
//
// Crash safety: Save must be transactional. A crash mid-write must not
// corrupt previously committed reports.
type ReportStore interface {
	// Save assigns an id when r.ID is empty, stores the report and returns the id.
	// CreatedAt is set to now when zero.
	Save(ctx context.Context, r *Report) (string, error)

	// ReadByID returns the report with the given id, or ErrNotFound.
	ReadByID(ctx context.Context, id string) (*Report, error)

	// ReadFromTime returns every report created at or after since,
	// oldest first. No reports yields an empty slice and no error.
	ReadFromTime(ctx context.Context, since time.Time) ([]*Report, error)

	// Close releases the underlying database.
	Close() error
}

// Report is one judged article.
type Report struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"` // article id at the feed
	Title      string    `json:"title"`
	Origin     string    `json:"origin"`
	Text       string    `json:"text"`
	Link       string    `json:"link"`
	CreatedAt  time.Time `json:"created_at"`
	Coins      []string  `json:"coins"`
	Keywords   []string  `json:"keywords"`
	Sentiment  Sentiment `json:"sentiment"`
	Advice     string    `json:"advice,omitempty"` // raw advisor reply
}

// Sentiment holds the advisor's probability estimates, each in [0,1].
type Sentiment struct {
	Negative float64 `json:"negative"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
}
