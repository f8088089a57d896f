package lexicon

import (
	"fmt"

	"github.com/corey/goodadvice/internal/adapters/ahocorasick"
)

// Validator answers whether a string contains any accepted tag, ignoring ASCII case.
// Tags are matched as plain substrings, no delimiter expansion.
type Validator struct {
	automaton *ahocorasick.Automaton
}

// NewValidator compiles the accepted tags.
func NewValidator(tags []string) (*Validator, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: empty tag list", ErrConfiguration)
	}
	a, err := ahocorasick.Compile(tags)
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}
	return &Validator{automaton: a}, nil
}

// IsValid reports whether text contains at least one accepted tag.
func (v *Validator) IsValid(text string) bool {
	return v.automaton.IsMatch(text)
}
