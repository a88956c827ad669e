package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-jss-crawler/internal/app"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/reporter"
	"go-jss-crawler/internal/scraper"

	"github.com/spf13/cobra"
)

var crawlFlags struct {
	date      string
	companies string
	mode      string
	stdout    bool
	timeout   time.Duration
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--date YYYYMMDD] [--company a,b] [--mode start|end]",
	Short: "Crawls one calendar day and stores the listings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		mode, err := scraper.ParseMode(crawlFlags.mode)
		if err != nil {
			return err
		}
		date := crawlFlags.date
		if date == "" {
			date = filter.FormatDay(time.Now().In(cfg.Location()))
		}
		if _, err := filter.ParseDay(date); err != nil {
			return err
		}

		ctx, cancel := cmd.Context(), func() {}
		if crawlFlags.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, crawlFlags.timeout)
		}
		defer cancel()

		outputs, err := app.OpenOutputs(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer outputs.Close()

		sink := outputs.Sink(date)
		if crawlFlags.stdout {
			sink = append(sink.(reporter.Multi), reporter.NewJSONWriter(os.Stdout))
		}

		req := scraper.Request{Date: date, Companies: filter.SplitNames(crawlFlags.companies), Mode: mode}
		res, err := app.New(cfg, app.Playwright, outputs.Notifier(), log).Run(ctx, req, sink)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "✅", res)
		return nil
	},
}

func init() {
	f := crawlCmd.Flags()
	f.StringVar(&crawlFlags.date, "date", "", "calendar day as YYYYMMDD (default today)")
	f.StringVar(&crawlFlags.companies, "company", "", "comma-separated company names to look for")
	f.StringVar(&crawlFlags.mode, "mode", "start", "which calendar label to collect: start (시) or end (끝)")
	f.BoolVar(&crawlFlags.stdout, "stdout", false, "also print the listings as JSON on stdout")
	f.DurationVar(&crawlFlags.timeout, "timeout", 10*time.Minute, "abort the crawl after this long (0 disables)")
	rootCmd.AddCommand(crawlCmd)
}
