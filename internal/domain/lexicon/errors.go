package lexicon

import "errors"

var (
	// ErrConfiguration marks an empty or malformed vocabulary, tag list or
	// delimiter set supplied at build time.
	ErrConfiguration = errors.New("lexicon configuration")

	// ErrInvariantViolation marks a pattern index outside the resolver's table.
	// It means the automaton and the resolver were built from different lists.
	ErrInvariantViolation = errors.New("lexicon invariant violation")
)
