package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "Crawls the jasoseol recruit calendar.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config")
}

// setup loads the config and builds the logger every command uses.
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("🔧 Config loaded", logger.String("calendar", cfg.Site.CalendarURL), logger.Bool("headless", cfg.Browser.Headless))
	return cfg, log, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
