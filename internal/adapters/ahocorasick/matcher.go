// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching.
//
// An Automaton is compiled once from a flat pattern list and is read-only afterwards,
// so any number of goroutines may scan with it concurrently. Matching folds ASCII case;
// non-ASCII bytes are compared as-is.
package ahocorasick

import (
	"container/heap"
	"fmt"
	"iter"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// CompilationError reports a pattern list the automaton cannot be built from.
// Index is -1 when the problem is with the list as a whole.
type CompilationError struct {
	Index   int
	Pattern string
	Reason  string
}

func (e *CompilationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("aho-corasick compile: %s", e.Reason)
	}
	return fmt.Sprintf("aho-corasick compile: pattern %d (%q): %s", e.Index, e.Pattern, e.Reason)
}

// Hit is one occurrence of a pattern in scanned text.
type Hit struct {
	Pattern int // index into the compiled pattern list
	Start   int // byte offset start (inclusive)
	End     int // byte offset end (exclusive)
}

// Automaton is a compiled, case-insensitive multi-pattern matcher.
type Automaton struct {
	ac       aho.AhoCorasick
	patterns []string
	maxLen   int
}

// Compile builds an automaton from patterns. The list must be non-empty and
// contain no empty strings. A panic inside the underlying builder is returned
// as a *CompilationError rather than propagated.
func Compile(patterns []string) (a *Automaton, err error) {
	if len(patterns) == 0 {
		return nil, &CompilationError{Index: -1, Reason: "empty pattern list"}
	}

	p := make([]string, len(patterns))
	copy(p, patterns)

	maxLen := 0
	for i, pat := range p {
		if pat == "" {
			return nil, &CompilationError{Index: i, Pattern: pat, Reason: "empty pattern"}
		}
		if len(pat) > maxLen {
			maxLen = len(pat)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = &CompilationError{Index: -1, Reason: fmt.Sprint(r)}
		}
	}()

	// StandardMatch is required for IterOverlapping.
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            aho.StandardMatch,
		DFA:                  true,
	})

	return &Automaton{
		ac:       builder.Build(p),
		patterns: p,
		maxLen:   maxLen,
	}, nil
}

// Scan starts a scan of text. The returned Scanner yields every hit, overlapping
// ones included, in order of start offset.
func (a *Automaton) Scan(text string) *Scanner {
	return &Scanner{
		it:     a.ac.IterOverlapping(text),
		maxLen: a.maxLen,
	}
}

// Hits is Scan as a range-over-func sequence. Each call rescans text.
func (a *Automaton) Hits(text string) iter.Seq[Hit] {
	return func(yield func(Hit) bool) {
		s := a.Scan(text)
		for {
			h, ok := s.Next()
			if !ok || !yield(h) {
				return
			}
		}
	}
}

// IsMatch reports whether any pattern occurs in text. It stops at the first hit.
func (a *Automaton) IsMatch(text string) bool {
	if text == "" {
		return false
	}
	return a.ac.IterOverlapping(text).Next() != nil
}

// PatternCount returns the number of patterns in the automaton.
func (a *Automaton) PatternCount() int {
	return len(a.patterns)
}

// Pattern returns the pattern string at the given index.
func (a *Automaton) Pattern(idx int) string {
	if idx < 0 || idx >= len(a.patterns) {
		return ""
	}
	return a.patterns[idx]
}

// Scanner is a single-use cursor over the hits of one text.
//
// The library reports overlapping matches in order of end offset. A later match
// can still start earlier than a pending one, but never earlier than
// end-maxLen of the most recent match, so hits are parked in a min-heap and
// released once they fall behind that frontier.
type Scanner struct {
	it       aho.Iter
	maxLen   int
	pending  hitHeap
	frontier int
	done     bool
}

// Next returns the next hit and true, or false once the text is exhausted.
func (s *Scanner) Next() (Hit, bool) {
	for {
		if len(s.pending) > 0 && (s.done || s.pending[0].Start <= s.frontier) {
			return heap.Pop(&s.pending).(Hit), true
		}
		if s.done {
			return Hit{}, false
		}

		m := s.it.Next()
		if m == nil {
			s.done = true
			continue
		}
		h := Hit{Pattern: m.Pattern(), Start: m.Start(), End: m.End()}
		heap.Push(&s.pending, h)
		s.frontier = h.End - s.maxLen
	}
}

type hitHeap []Hit

func (h hitHeap) Len() int { return len(h) }
func (h hitHeap) Less(i, j int) bool {
	if h[i].Start != h[j].Start {
		return h[i].Start < h[j].Start
	}
	return h[i].Pattern < h[j].Pattern
}
func (h hitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x any)   { *h = append(*h, x.(Hit)) }
func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
