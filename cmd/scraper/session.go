package main

import (
	"go-jss-crawler/internal/app"
	"go-jss-crawler/internal/browser"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper/jasoseol"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Logs in if needed and saves the browser session for later crawls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if browser.StateUsable(cfg.StatePath) {
			log.Info("🍪 Saved session is still usable", logger.String("path", cfg.StatePath))
		}

		b, err := app.Playwright(cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		shots := browser.NewScreenshotDebugger(cfg.ScreenshotDir, log)
		sess, err := jasoseol.NewSessionManager(b, cfg, shots, log).Ensure(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		log.Info("✅ Session ready", logger.String("path", cfg.StatePath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
