package cli

import (
	"fmt"
	"os"

	"site-panel/internal/app"
	"site-panel/internal/config"
	"site-panel/internal/logger"

	"github.com/spf13/cobra"
)

var configPath string

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "site-panel",
		Short:         "Admin backend that publishes zipped static sites behind nginx",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (default "+config.DefaultPath+")")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newUserCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration, starts logging and opens the application.
func bootstrap() (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Dir, cfg.Log.Level, cfg.Log.Console || config.RunningInTTY())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Errorw("application init failed", "err", err)
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}
