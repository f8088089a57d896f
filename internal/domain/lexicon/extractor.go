package lexicon

import (
	"fmt"
	"log/slog"

	"github.com/corey/goodadvice/internal/adapters/ahocorasick"
	"golang.org/x/text/unicode/norm"
)

// Option configures an Extractor at construction.
type Option func(*options)

type options struct {
	delimiters []Delimiter
	normalize  bool
	log        *slog.Logger
}

// WithDelimiters replaces DefaultDelimiters. The order of pairs fixes the
// pattern layout, so two extractors built with different orders are not
// interchangeable at the pattern-index level.
func WithDelimiters(pairs ...Delimiter) Option {
	return func(o *options) {
		o.delimiters = append([]Delimiter(nil), pairs...)
	}
}

// WithoutNormalization scans text as given instead of NFKC-folding it first.
func WithoutNormalization() Option {
	return func(o *options) { o.normalize = false }
}

// WithLogger sets the logger used for resolver diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Mention is one resolved hit: which entity, through which variant, where.
// Start and End are byte offsets into the scanned text.
type Mention struct {
	Entity  string
	Variant string
	Start   int
	End     int
}

// Extractor finds canonical vocabulary entities in text.
// It is immutable and safe for concurrent use.
type Extractor struct {
	vocabulary []string
	delimiters []Delimiter
	normalize  bool
	automaton  *ahocorasick.Automaton
	resolver   *Resolver
}

// NewExtractor normalizes the vocabulary, generates delimiter variants, compiles
// them and builds the resolver table. Any failure leaves nothing half-built.
// Entries get the same NFKC folding as scanned text unless WithoutNormalization
// is set.
func NewExtractor(vocabulary []string, opts ...Option) (*Extractor, error) {
	o := options{delimiters: DefaultDelimiters, normalize: true}
	for _, opt := range opts {
		opt(&o)
	}

	vocab, err := normalizeVocabulary(vocabulary, o.normalize)
	if err != nil {
		return nil, err
	}

	variants, err := GenerateVariants(vocab, o.delimiters)
	if err != nil {
		return nil, err
	}

	automaton, err := ahocorasick.Compile(variants.Patterns)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	resolver, err := NewResolver(vocab, variants.Owners, o.log)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	if resolver.Len() != automaton.PatternCount() {
		return nil, fmt.Errorf("build extractor: %w: %d patterns, %d owners",
			ErrInvariantViolation, automaton.PatternCount(), resolver.Len())
	}

	return &Extractor{
		vocabulary: vocab,
		delimiters: o.delimiters,
		normalize:  o.normalize,
		automaton:  automaton,
		resolver:   resolver,
	}, nil
}

// Extract returns every vocabulary entity mentioned in text, each once.
// Order is not part of the contract. No match yields an empty result.
func (e *Extractor) Extract(text string) []string {
	scan := e.prepare(text)
	return e.resolver.Resolve(e.automaton.Hits(scan))
}

// Mentions returns every hit with its entity and matched variant, in order of
// start offset. Offsets refer to text after normalization, without the
// boundary padding Extract adds.
func (e *Extractor) Mentions(text string) []Mention {
	scan := e.prepare(text)
	limit := len(scan) - 2

	var out []Mention
	for h := range e.automaton.Hits(scan) {
		entity, ok := e.resolver.Canonical(h.Pattern)
		if !ok {
			continue
		}
		out = append(out, Mention{
			Entity:  entity,
			Variant: e.automaton.Pattern(h.Pattern),
			Start:   clamp(h.Start-1, 0, limit),
			End:     clamp(h.End-1, 0, limit),
		})
	}
	return out
}

// Vocabulary returns a copy of the normalized vocabulary.
func (e *Extractor) Vocabulary() []string {
	return append([]string(nil), e.vocabulary...)
}

// PatternCount returns len(Vocabulary()) times the number of delimiter pairs.
func (e *Extractor) PatternCount() int {
	return e.automaton.PatternCount()
}

// Resolver exposes the pattern-to-entity table.
func (e *Extractor) Resolver() *Resolver {
	return e.resolver
}

// prepare folds compatibility characters (full-width brackets, no-break spaces)
// and pads with one space on each side so a leading or trailing entity still
// meets the " x " variant.
func (e *Extractor) prepare(text string) string {
	if e.normalize && !norm.NFKC.IsNormalString(text) {
		text = norm.NFKC.String(text)
	}
	return " " + text + " "
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
