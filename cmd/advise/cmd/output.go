package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/goodadvice/internal/domain/lexicon"
	"github.com/corey/goodadvice/internal/domain/sentiment"
	"github.com/corey/goodadvice/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// palette switches colors off for non-terminal output.
type palette struct{ on bool }

func (p palette) c(code, s string) string {
	if !p.on {
		return s
	}
	return code + s + colorReset
}

// formatReport renders one stored report.
//
//	● positive  Bitcoin tops $70k
//	  coins: bitcoin, btc  │ -0.10 ~0.20 +0.70 │ 2025-03-01 09:30
//	  https://example.com/a1
func formatReport(r *ports.Report, p palette) string {
	var sb strings.Builder

	mood := sentiment.Dominant(r.Sentiment)
	color := colorYellow
	switch mood {
	case "positive":
		color = colorGreen
	case "negative":
		color = colorRed
	}

	fmt.Fprintf(&sb, "%s %-8s  %s\n", p.c(color, "●"), mood, p.c(colorBold, r.Title))

	coins := "-"
	if len(r.Coins) > 0 {
		coins = strings.Join(r.Coins, ", ")
	}
	fmt.Fprintf(&sb, "  coins: %s  │ -%.2f ~%.2f +%.2f │ %s\n",
		p.c(colorCyan, coins),
		r.Sentiment.Negative, r.Sentiment.Neutral, r.Sentiment.Positive,
		r.CreatedAt.Local().Format("2006-01-02 15:04"))

	if r.Link != "" {
		fmt.Fprintf(&sb, "  %s\n", p.c(colorGray, r.Link))
	}
	fmt.Fprintf(&sb, "  %s\n", p.c(colorGray, "id "+r.ID))
	return sb.String()
}

// formatMentions renders one line per hit: span, entity and the variant that matched.
func formatMentions(ms []lexicon.Mention, p palette) string {
	if len(ms) == 0 {
		return "no mentions\n"
	}
	var sb strings.Builder
	for _, m := range ms {
		fmt.Fprintf(&sb, "%5d:%-5d %s  %s\n", m.Start, m.End, p.c(colorCyan, m.Entity), p.c(colorGray, fmt.Sprintf("%q", m.Variant)))
	}
	return sb.String()
}

// formatSince renders a cutoff for the reports header.
func formatSince(t time.Time) string {
	if t.IsZero() {
		return "all time"
	}
	return "since " + t.Local().Format("2006-01-02 15:04")
}
