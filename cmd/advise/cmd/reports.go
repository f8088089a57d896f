package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/corey/goodadvice/internal/app"
	"github.com/spf13/cobra"
)

var (
	reportsSince time.Duration
	reportsID    string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List stored sentiment reports",
	Long:  "Lists reports created within --since (0 = all), or shows one report by --id.",
	RunE:  runReports,
}

func init() {
	reportsCmd.Flags().DurationVar(&reportsSince, "since", 24*time.Hour, "how far back to list (0 for all)")
	reportsCmd.Flags().StringVar(&reportsID, "id", "", "show a single report")
}

func runReports(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	paths, err := app.NewPaths(cfg.Storage.Path, "")
	if err != nil {
		return err
	}
	store, err := app.OpenStore(cfg.Storage.Driver, paths.DB)
	if err != nil {
		return wrapOpenError(err, paths.DB)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	pal := palette{on: isStdoutTTY()}

	if reportsID != "" {
		r, err := store.ReadByID(ctx, reportsID)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatReport(r, pal))
		if r.Advice != "" {
			fmt.Fprintf(out, "\n%s\n", r.Advice)
		}
		return nil
	}

	var since time.Time
	if reportsSince > 0 {
		since = time.Now().Add(-reportsSince)
	}
	list, err := store.ReadFromTime(ctx, since)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %d reports %s\n", pal.c(colorBold, "⚡"), len(list), formatSince(since))
	for _, r := range list {
		fmt.Fprint(out, formatReport(r, pal))
	}
	return nil
}
