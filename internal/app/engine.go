package app

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/corey/goodadvice/internal/domain/lexicon"
)

// Engine holds the current extractor and language validator. The extractor
// can be swapped at runtime by Reload; callers always see a complete one.
// Engine implements ports.EntityExtractor and ports.LanguageValidator.
type Engine struct {
	extractor atomic.Pointer[lexicon.Extractor]
	validator *lexicon.Validator
	log       *slog.Logger
}

// NewEngine builds the validator from languages and the extractor from vocab.
func NewEngine(vocab, languages []string, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	v, err := lexicon.NewValidator(languages)
	if err != nil {
		return nil, err
	}
	e := &Engine{validator: v, log: log}
	x, err := e.build(vocab)
	if err != nil {
		return nil, err
	}
	e.extractor.Store(x)
	return e, nil
}

// Extract delegates to the current extractor.
func (e *Engine) Extract(text string) []string {
	return e.Extractor().Extract(text)
}

// Mentions delegates to the current extractor.
func (e *Engine) Mentions(text string) []lexicon.Mention {
	return e.Extractor().Mentions(text)
}

// IsValid reports whether text carries an accepted language tag.
func (e *Engine) IsValid(text string) bool {
	return e.validator.IsValid(text)
}

// Extractor returns the extractor currently in use.
func (e *Engine) Extractor() *lexicon.Extractor {
	return e.extractor.Load()
}

// Reload rebuilds the extractor from the vocabulary file at path. On any
// error the previous extractor stays in place.
func (e *Engine) Reload(path string) error {
	vocab, err := lexicon.ReadVocabularyFile(path)
	if err != nil {
		return fmt.Errorf("reload vocabulary: %w", err)
	}
	x, err := e.build(vocab)
	if err != nil {
		return fmt.Errorf("reload vocabulary: %w", err)
	}
	prev := e.extractor.Swap(x)
	e.log.Info("vocabulary reloaded",
		slog.String("path", path),
		slog.Int("entities", len(x.Vocabulary())),
		slog.Int("previous", len(prev.Vocabulary())))
	return nil
}

func (e *Engine) build(vocab []string) (*lexicon.Extractor, error) {
	if amb := lexicon.AmbiguousEntries(vocab, lexicon.DefaultDelimiters); len(amb) > 0 {
		e.log.Warn("vocabulary entries contain delimiter characters and may match unexpectedly",
			slog.Any("entries", amb))
	}
	return lexicon.NewExtractor(vocab, lexicon.WithLogger(e.log))
}

// LoadVocabulary returns the entries of path, or DefaultVocabulary when path is empty.
func LoadVocabulary(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), lexicon.DefaultVocabulary...), nil
	}
	return lexicon.ReadVocabularyFile(path)
}
