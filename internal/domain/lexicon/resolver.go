package lexicon

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/corey/goodadvice/internal/adapters/ahocorasick"
)

// Resolver maps automaton pattern indices back to canonical entities.
// It is read-only after construction.
type Resolver struct {
	entities []string
	owners   []int
	log      *slog.Logger
}

// NewResolver builds a resolver from the vocabulary and the owner table produced
// alongside the pattern list. Every owner must index into entities.
func NewResolver(entities []string, owners []int, log *slog.Logger) (*Resolver, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrConfiguration)
	}
	for i, o := range owners {
		if o < 0 || o >= len(entities) {
			return nil, fmt.Errorf("%w: pattern %d owned by entity %d of %d", ErrInvariantViolation, i, o, len(entities))
		}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{entities: entities, owners: owners, log: log}, nil
}

// CanonicalIndex returns the vocabulary index for a pattern index.
func (r *Resolver) CanonicalIndex(pattern int) (int, bool) {
	if pattern < 0 || pattern >= len(r.owners) {
		return 0, false
	}
	return r.owners[pattern], true
}

// Canonical returns the canonical entity for a pattern index.
func (r *Resolver) Canonical(pattern int) (string, bool) {
	i, ok := r.CanonicalIndex(pattern)
	if !ok {
		return "", false
	}
	return r.entities[i], true
}

// MustResolveIndex is CanonicalIndex for callers that treat an unknown pattern
// as a programming error. It panics with ErrInvariantViolation.
func (r *Resolver) MustResolveIndex(pattern int) int {
	i, ok := r.CanonicalIndex(pattern)
	if !ok {
		panic(fmt.Errorf("%w: pattern %d outside [0,%d)", ErrInvariantViolation, pattern, len(r.owners)))
	}
	return i
}

// Resolve drains hits and returns each matched entity once, in order of first
// occurrence. Hits with an unknown pattern index are logged and skipped.
func (r *Resolver) Resolve(hits iter.Seq[ahocorasick.Hit]) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for h := range hits {
		entity, ok := r.Canonical(h.Pattern)
		if !ok {
			r.log.Warn("lexicon: hit outside resolver table",
				slog.Int("pattern", h.Pattern),
				slog.Int("patterns", len(r.owners)))
			continue
		}
		if _, dup := seen[entity]; dup {
			continue
		}
		seen[entity] = struct{}{}
		out = append(out, entity)
	}
	return out
}

// Len returns the number of patterns the resolver can map.
func (r *Resolver) Len() int {
	return len(r.owners)
}
