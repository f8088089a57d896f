// Package bbolt implements ports.ReportStore using bbolt (embedded B+ tree).
// Reports live as JSON in the "reports" bucket keyed by id. The "by_time" bucket
// indexes them by creation time so range reads are a cursor seek. Writes are
// transactional: a crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corey/goodadvice/internal/ports"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketReports = []byte("reports")
	bucketByTime  = []byte("by_time")
)

// Store implements ports.ReportStore backed by bbolt.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketReports, bucketByTime} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores r, assigning a UUID when r.ID is empty and stamping CreatedAt
// when it is zero. Saving an existing id replaces it and moves its time entry.
func (s *Store) Save(ctx context.Context, r *ports.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nil report")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rep := *r
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = s.now()
	}
	rep.CreatedAt = rep.CreatedAt.UTC().Truncate(time.Millisecond)

	data, err := json.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		reports := tx.Bucket(bucketReports)
		byTime := tx.Bucket(bucketByTime)

		if prev := reports.Get([]byte(rep.ID)); prev != nil {
			var old ports.Report
			if err := json.Unmarshal(prev, &old); err == nil {
				if err := byTime.Delete(timeKey(old.CreatedAt, old.ID)); err != nil {
					return err
				}
			}
		}
		if err := reports.Put([]byte(rep.ID), data); err != nil {
			return err
		}
		return byTime.Put(timeKey(rep.CreatedAt, rep.ID), []byte(rep.ID))
	})
	if err != nil {
		return "", fmt.Errorf("save report %s: %w", rep.ID, err)
	}

	r.ID = rep.ID
	r.CreatedAt = rep.CreatedAt
	return rep.ID, nil
}

// ReadByID returns the report stored under id, or ports.ErrNotFound.
func (s *Store) ReadByID(ctx context.Context, id string) (*ports.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketReports).Get([]byte(id))
		if v == nil {
			return nil
		}
		// Copy: bbolt values are only valid during the transaction.
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}
	if data == nil {
		return nil, fmt.Errorf("report %s: %w", id, ports.ErrNotFound)
	}

	var rep ports.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", id, err)
	}
	return &rep, nil
}

// ReadFromTime returns reports created at or after since, oldest first.
func (s *Store) ReadFromTime(ctx context.Context, since time.Time) ([]*ports.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*ports.Report, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		reports := tx.Bucket(bucketReports)
		c := tx.Bucket(bucketByTime).Cursor()
		for k, v := c.Seek(timeKey(since, "")); k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			data := reports.Get(v)
			if data == nil {
				// Index entry without a report; skip it rather than fail the read.
				continue
			}
			var rep ports.Report
			if err := json.Unmarshal(data, &rep); err != nil {
				_, id, _ := splitTimeKey(k)
				return fmt.Errorf("unmarshal report %s: %w", id, err)
			}
			out = append(out, &rep)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read reports since %s: %w", since.Format(time.RFC3339), err)
	}
	return out, nil
}
