package main

import (
	"context"
	"time"

	"go-jss-crawler/internal/app"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scheduler"
	"go-jss-crawler/internal/scraper"

	"github.com/spf13/cobra"
)

var scheduleFlags struct {
	companies string
	runNow    bool
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Crawls today's listings on the configured cron schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		outputs, err := app.OpenOutputs(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer outputs.Close()

		runner := app.New(cfg, app.Playwright, outputs.Notifier(), log)
		companies := filter.SplitNames(scheduleFlags.companies)
		crawlToday := func(ctx context.Context) {
			date := filter.FormatDay(time.Now().In(cfg.Location()))
			req := scraper.Request{Date: date, Companies: companies, Mode: scraper.ModeStart}
			if _, err := runner.Run(ctx, req, outputs.Sink(date)); err != nil {
				log.Error("❌ Scheduled crawl failed", logger.String("date", date), logger.Error(err))
			}
		}

		s := scheduler.New(cfg.Location(), log)
		next, err := s.Add(cfg.Schedule, crawlToday)
		if err != nil {
			return err
		}
		s.Start()
		log.Info("📅 Scheduler started", logger.String("schedule", cfg.Schedule), logger.String("next_run", next.Format(time.RFC3339)))

		if scheduleFlags.runNow {
			crawlToday(ctx)
		}

		<-ctx.Done()
		log.Info("🛑 Stopping scheduler")
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return s.Stop(stopCtx)
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFlags.companies, "company", "", "comma-separated company names to look for")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.runNow, "now", false, "also crawl once right away")
	rootCmd.AddCommand(scheduleCmd)
}
