package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/corey/goodadvice/internal/app"
	"github.com/spf13/cobra"
)

var extractVerbose bool

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "List the coins mentioned in text",
	Long:  "Runs the coin extractor on the arguments, or on stdin when none are given. No network or database access.",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "print every mention with its byte span")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := app.NewEngineOnly(cfg, log)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	out := cmd.OutOrStdout()
	if extractVerbose {
		fmt.Fprint(out, formatMentions(engine.Mentions(text), palette{on: isStdoutTTY()}))
		return nil
	}
	for _, coin := range engine.Extract(text) {
		fmt.Fprintln(out, coin)
	}
	return nil
}
