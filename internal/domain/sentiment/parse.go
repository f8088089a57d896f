// Package sentiment reads the advisor's JSON sentiment estimate out of a free-text reply.
package sentiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/corey/goodadvice/internal/ports"
)

// ErrNoJSON is returned when a reply contains no JSON object.
var ErrNoJSON = errors.New("sentiment: no JSON object in reply")

type estimate struct {
	Negative *float64 `json:"negative"`
	Neutral  *float64 `json:"neutral"`
	Positive *float64 `json:"positive"`
}

// Parse decodes the first JSON object in reply that reads as an estimate and
// returns its three probabilities. Each must be present and within [0,1].
// Text around the object, braces included, is ignored.
func Parse(reply string) (ports.Sentiment, error) {
	e, err := decodeFirst(reply)
	if err != nil {
		return ports.Sentiment{}, err
	}

	fields := []struct {
		name string
		v    *float64
	}{
		{"negative", e.Negative},
		{"neutral", e.Neutral},
		{"positive", e.Positive},
	}
	for _, f := range fields {
		if f.v == nil {
			return ports.Sentiment{}, fmt.Errorf("sentiment: missing %q", f.name)
		}
		if *f.v < 0 || *f.v > 1 {
			return ports.Sentiment{}, fmt.Errorf("sentiment: %s=%v outside [0,1]", f.name, *f.v)
		}
	}

	return ports.Sentiment{
		Negative: *e.Negative,
		Neutral:  *e.Neutral,
		Positive: *e.Positive,
	}, nil
}

// Dominant names the largest of the three probabilities. Ties go to neutral.
func Dominant(s ports.Sentiment) string {
	switch {
	case s.Positive > s.Negative && s.Positive > s.Neutral:
		return "positive"
	case s.Negative > s.Positive && s.Negative > s.Neutral:
		return "negative"
	default:
		return "neutral"
	}
}

// decodeFirst tries each '{' in turn and decodes one JSON value from there,
// so trailing prose never reaches the decoder. Models tend to wrap JSON in
// prose or code fences. The first decode error is reported when no position works.
func decodeFirst(reply string) (estimate, error) {
	var firstErr error
	for i := 0; i < len(reply); i++ {
		j := strings.IndexByte(reply[i:], '{')
		if j < 0 {
			break
		}
		i += j
		if !strings.Contains(reply[i:], "}") {
			break
		}

		var e estimate
		err := json.NewDecoder(strings.NewReader(reply[i:])).Decode(&e)
		if err == nil {
			if e.Negative != nil || e.Neutral != nil || e.Positive != nil {
				return e, nil
			}
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return estimate{}, fmt.Errorf("sentiment: decode: %w", firstErr)
	}
	return estimate{}, ErrNoJSON
}
