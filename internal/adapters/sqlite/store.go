// Package sqlite implements ports.ReportStore on SQLite.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/corey/goodadvice/internal/ports"
	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store is the SQLite-backed report store. Writes are serialized.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sentiment_reports (
    id TEXT PRIMARY KEY,
    resource_id TEXT NOT NULL,
    title TEXT NOT NULL,
    origin TEXT NOT NULL,
    text TEXT NOT NULL,
    link TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    coins TEXT NOT NULL,
    keywords TEXT NOT NULL,
    sentiment TEXT NOT NULL,
    advice TEXT
);

CREATE INDEX IF NOT EXISTS idx_sentiment_reports_created ON sentiment_reports(created_at);
`

const selectColumns = `id, resource_id, title, origin, text, link, created_at, coins, keywords, sentiment, advice`

// NewStore opens (or creates) the database file at path.
func NewStore(path string) (*Store, error) {
	return NewStoreWithDSN("file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)")
}

// NewStoreWithDSN opens a store with a specific data source name.
// Use ":memory:" for an in-memory database.
func NewStoreWithDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts or replaces r, assigning an id and CreatedAt when missing.
func (s *Store) Save(ctx context.Context, r *ports.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nil report")
	}

	rep := *r
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = s.now()
	}
	rep.CreatedAt = rep.CreatedAt.UTC().Truncate(time.Millisecond)

	coins, err := marshalList(rep.Coins)
	if err != nil {
		return "", fmt.Errorf("marshal coins: %w", err)
	}
	keywords, err := marshalList(rep.Keywords)
	if err != nil {
		return "", fmt.Errorf("marshal keywords: %w", err)
	}
	sentiment, err := json.Marshal(rep.Sentiment)
	if err != nil {
		return "", fmt.Errorf("marshal sentiment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sentiment_reports (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resource_id = excluded.resource_id,
			title = excluded.title,
			origin = excluded.origin,
			text = excluded.text,
			link = excluded.link,
			created_at = excluded.created_at,
			coins = excluded.coins,
			keywords = excluded.keywords,
			sentiment = excluded.sentiment,
			advice = excluded.advice
	`, rep.ID, rep.ResourceID, rep.Title, rep.Origin, rep.Text, rep.Link,
		rep.CreatedAt.UnixMilli(), coins, keywords, string(sentiment), rep.Advice)
	if err != nil {
		return "", fmt.Errorf("save report %s: %w", rep.ID, err)
	}

	r.ID = rep.ID
	r.CreatedAt = rep.CreatedAt
	return rep.ID, nil
}

// ReadByID returns the report stored under id, or ports.ErrNotFound.
func (s *Store) ReadByID(ctx context.Context, id string) (*ports.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM sentiment_reports WHERE id = ?`, id)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}
	return rep, nil
}

// ReadFromTime returns reports created at or after since, oldest first.
func (s *Store) ReadFromTime(ctx context.Context, since time.Time) ([]*ports.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM sentiment_reports
		WHERE created_at >= ?
		ORDER BY created_at, id
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	defer rows.Close()

	out := make([]*ports.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*ports.Report, error) {
	var (
		rep                        ports.Report
		createdAt                  int64
		coins, keywords, sentiment string
		advice                     sql.NullString
	)
	err := sc.Scan(&rep.ID, &rep.ResourceID, &rep.Title, &rep.Origin, &rep.Text, &rep.Link,
		&createdAt, &coins, &keywords, &sentiment, &advice)
	if err != nil {
		return nil, err
	}
	rep.CreatedAt = time.UnixMilli(createdAt).UTC()
	rep.Advice = advice.String
	if err := json.Unmarshal([]byte(coins), &rep.Coins); err != nil {
		return nil, fmt.Errorf("coins: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &rep.Keywords); err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(sentiment), &rep.Sentiment); err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}
	return &rep, nil
}

// marshalList encodes a nil slice as [] so the column is never "null".
func marshalList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}
