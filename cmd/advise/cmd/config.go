package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the effective configuration after file, env and defaults are merged. API keys are masked.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	m := cfg.Masked()
	out := cmd.OutOrStdout()

	vocab := m.Lexicon.VocabularyPath
	if vocab == "" {
		vocab = "(built-in)"
	}
	orNone := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}

	fmt.Fprintf(out, "%s⚡ advise config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Feed:       %s?q=%s  key %s  timeout %s\n", m.Feed.BaseURL, m.Feed.Query, orNone(m.Feed.APIKey), m.Feed.Timeout)
	fmt.Fprintf(out, "  Advisor:    %s  max_tokens %d  key %s\n", m.Advisor.Model, m.Advisor.MaxTokens, orNone(m.Advisor.APIKey))
	fmt.Fprintf(out, "  Schedule:   every %s, %d at a time\n", m.Schedule.Interval, m.Schedule.Concurrency)
	fmt.Fprintf(out, "  Languages:  %s\n", strings.Join(m.Lexicon.Languages, ", "))
	fmt.Fprintf(out, "  Vocabulary: %s  (watch %t)\n", vocab, !m.Lexicon.NoWatch)
	fmt.Fprintf(out, "  Storage:    %s  %s\n", m.Storage.Driver, m.Storage.Path)
	fmt.Fprintf(out, "  Log:        %s/%s\n", m.Log.Level, m.Log.Format)
	return nil
}
