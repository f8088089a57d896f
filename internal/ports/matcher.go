package ports

// EntityExtractor returns the canonical vocabulary entities mentioned in text.
// Each entity appears at most once; order is unspecified.
type EntityExtractor interface {
	Extract(text string) []string
}

// LanguageValidator reports whether a language label is one the pipeline accepts.
type LanguageValidator interface {
	IsValid(text string) bool
}
