package cmd

import (
	"fmt"

	"github.com/corey/goodadvice/internal/app"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:           "validate <language>",
	Short:         "Check a language label against lexicon.languages",
	Long:          "Prints valid or invalid. Exits 1 when the label is not accepted.",
	Args:          cobra.ExactArgs(1),
	RunE:          runValidate,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := app.NewEngineOnly(cfg, log)
	if err != nil {
		return err
	}

	if engine.IsValid(args[0]) {
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "invalid")
	return exitCode{code: 1}
}
