package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/hems/app"
	"github.com/kilianp07/hems/config"
	"github.com/kilianp07/hems/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "hems",
	Short:        "Household PV, battery and grid dispatch optimizer",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads the configuration, builds the service and runs fn with a
// context cancelled on SIGINT or SIGTERM.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.LogLevel != "" && os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	go func() {
		if err := svc.ServeMetrics(ctx); err != nil {
			logger.New("main").Errorf("prom server: %v", err)
		}
	}()
	return fn(ctx, svc)
}
