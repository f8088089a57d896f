package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/corey/goodadvice/internal/app"
	"github.com/corey/goodadvice/internal/config"
	"github.com/corey/goodadvice/internal/ports"
	"github.com/spf13/cobra"
)

var pullOnce bool

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull news and store sentiment reports",
	Long: "Pulls the latest articles from newsdata.io, tags coins, asks the model for a sentiment\n" +
		"estimate and stores a report per article. Repeats every schedule.interval until interrupted.",
	RunE: runPull,
}

func init() {
	pullCmd.Flags().BoolVar(&pullOnce, "once", false, "run a single cycle and exit")
}

func runPull(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Pipeline()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pal := palette{on: isStdoutTTY()}
	var mu sync.Mutex
	p.OnReport = func(_ ports.Article, r *ports.Report) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(out, formatReport(r, pal))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pullOnce {
		sum, err := p.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s pulled %d, saved %d, failed %d, unparsed %d\n",
			pal.c(colorBold, "⚡"), sum.Pulled, sum.Saved, sum.Failed, sum.Unparsed)
		return nil
	}

	log.Info("pull loop started", "interval", cfg.Schedule.Interval, "concurrency", cfg.Schedule.Concurrency)
	return p.Run(ctx)
}

// openApp builds the app. A lock failure names the database file that was
// actually opened, not the configured (possibly relative) path.
func openApp(cfg *config.Config, log *slog.Logger) (*app.App, error) {
	a, err := app.New(cfg, log)
	if err == nil {
		return a, nil
	}
	paths, perr := app.NewPaths(cfg.Storage.Path, "")
	if perr != nil {
		return nil, err
	}
	return nil, wrapOpenError(err, paths.DB)
}
