package cmd

import (
	"log/slog"

	"github.com/corey/goodadvice/internal/app"
	"github.com/corey/goodadvice/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "advise",
	Short: "advise — crypto news sentiment",
	Long:  "Pulls crypto news, tags the coins each article mentions and stores a model's sentiment estimate.",
}

// loadConfig reads --config (else CONFIG_PATH, else ./config.yaml) and builds the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (.yaml or .env)")

	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(configCmd)
}
