// Package lexicon finds vocabulary terms in free text with one Aho-Corasick pass.
//
// The automaton has no notion of a word boundary, so each canonical entity is
// expanded into delimiter-wrapped variants (" btc ", "(btc)", "[btc,", ...) and
// only those are matched. "eth" inside "weather" is never reported because no
// variant of it occurs there. Every variant keeps the index of the entity it
// came from, and hits are mapped back through that table.
package lexicon

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Delimiter is the text wrapped around an entity to approximate a whole-word match.
type Delimiter struct {
	Open  string
	Close string
}

// Wrap returns entity surrounded by the delimiter pair.
func (d Delimiter) Wrap(entity string) string {
	return d.Open + entity + d.Close
}

// DefaultDelimiters is the pair set used unless WithDelimiters overrides it.
// Order matters: it fixes the layout of the flattened pattern list.
var DefaultDelimiters = []Delimiter{
	{" ", " "},
	{" ", "."},
	{"(", ","},
	{"(", " "},
	{" ", ")"},
	{"(", ")"},
	{"[", ","},
	{"[", " "},
	{" ", "]"},
	{"[", "]"},
}

// Variants is a flattened pattern list and the owner of each pattern.
// Owners[i] is the vocabulary index that Patterns[i] was generated from.
type Variants struct {
	Patterns []string
	Owners   []int
}

// GenerateVariants wraps every entity in every delimiter pair. The pair loop is
// outermost, so pattern i belongs to entity i mod len(vocabulary).
func GenerateVariants(vocabulary []string, pairs []Delimiter) (Variants, error) {
	if len(vocabulary) == 0 {
		return Variants{}, fmt.Errorf("%w: empty vocabulary", ErrConfiguration)
	}
	if len(pairs) == 0 {
		return Variants{}, fmt.Errorf("%w: empty delimiter set", ErrConfiguration)
	}
	for i, p := range pairs {
		if p.Open == "" && p.Close == "" {
			return Variants{}, fmt.Errorf("%w: delimiter pair %d is empty", ErrConfiguration, i)
		}
	}

	n := len(vocabulary) * len(pairs)
	v := Variants{
		Patterns: make([]string, 0, n),
		Owners:   make([]int, 0, n),
	}
	for _, p := range pairs {
		for i, entity := range vocabulary {
			v.Patterns = append(v.Patterns, p.Wrap(entity))
			v.Owners = append(v.Owners, i)
		}
	}
	return v, nil
}

// NormalizeVocabulary folds entries the way Extract folds text: NFKC, then
// trimmed. Entries equal under ASCII case folding are duplicates and the first
// spelling is kept, since the automaton could not tell them apart. Blank
// entries are a configuration error.
func NormalizeVocabulary(entries []string) ([]string, error) {
	return normalizeVocabulary(entries, true)
}

func normalizeVocabulary(entries []string, nfkc bool) ([]string, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrConfiguration)
	}
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for i, e := range entries {
		if nfkc {
			e = norm.NFKC.String(e)
		}
		e = strings.TrimSpace(e)
		if e == "" {
			return nil, fmt.Errorf("%w: entry %d is blank", ErrConfiguration, i)
		}
		key := foldASCII(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out, nil
}

// foldASCII lowercases A-Z only, matching the automaton's case folding.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// AmbiguousEntries returns the entities that contain a delimiter character.
// Such entities still compile, but their variants may overlap neighbouring text
// in ways a plain word would not.
func AmbiguousEntries(vocabulary []string, pairs []Delimiter) []string {
	var chars strings.Builder
	for _, p := range pairs {
		chars.WriteString(p.Open)
		chars.WriteString(p.Close)
	}
	set := chars.String()

	var out []string
	for _, e := range vocabulary {
		if strings.ContainsAny(e, set) {
			out = append(out, e)
		}
	}
	return out
}
