// Package app runs one crawl end to end: launch the browser, stream the
// listings into a sink, report a summary and close everything.
package app

import (
	"context"
	"fmt"
	"time"

	"go-jss-crawler/internal/browser"
	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/reporter"
	"go-jss-crawler/internal/scraper"
	"go-jss-crawler/internal/scraper/jasoseol"
)

// Launcher starts a browser for one run.
type Launcher func(cfg *config.Config, log logger.Logger) (dom.Browser, error)

// Playwright launches Chromium with the configured browser options.
func Playwright(cfg *config.Config, log logger.Logger) (dom.Browser, error) {
	pm, err := browser.NewPlaywright(browser.Options{
		Headless:       cfg.Browser.Headless,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		BlockResources: cfg.Browser.BlockResources,
	}, log)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// Notifier receives the end-of-run summary. *telegram.Bot satisfies it.
type Notifier interface {
	SendStatus(message string) error
	SendError(err error) error
}

type App struct {
	cfg      *config.Config
	launch   Launcher
	notifier Notifier
	log      logger.Logger
}

// New builds an App. notifier may be nil.
func New(cfg *config.Config, launch Launcher, notifier Notifier, log logger.Logger) *App {
	return &App{cfg: cfg, launch: launch, notifier: notifier, log: log}
}

// Result summarizes one run.
type Result struct {
	Date       string        `json:"date"`
	Mode       scraper.Mode  `json:"mode"`
	Listings   int           `json:"listings"`
	SinkErrors int           `json:"sink_errors"`
	Duration   time.Duration `json:"duration"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%s): %d listings, %d sink errors in %s",
		r.Date, r.Mode.Label(), r.Listings, r.SinkErrors, r.Duration.Round(time.Second))
}

// Run crawls req into sink. sink is closed before Run returns. The error is
// a launch failure or the error the crawl yielded.
func (a *App) Run(ctx context.Context, req scraper.Request, sink reporter.Sink) (Result, error) {
	start := time.Now()
	if req.Mode == "" {
		req.Mode = scraper.ModeStart
	}
	res := Result{Date: req.Date, Mode: req.Mode}

	runErr := a.crawl(ctx, req, sink, &res)
	if err := sink.Close(); err != nil {
		a.log.Warn("⚠️ Failed to close sink", logger.Error(err))
	}
	res.Duration = time.Since(start)

	if runErr != nil {
		a.log.Error("❌ Run failed", logger.Error(runErr))
		a.notifyError(runErr)
		return res, runErr
	}

	a.log.Info("🏁 Run finished", logger.Int("listings", res.Listings), logger.Int("sink_errors", res.SinkErrors))
	a.notifyStatus("✅ " + res.String())
	return res, nil
}

func (a *App) crawl(ctx context.Context, req scraper.Request, sink reporter.Sink, res *Result) error {
	b, err := a.launch(a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			a.log.Warn("⚠️ Failed to close browser", logger.Error(err))
		}
	}()

	crawler, err := jasoseol.New(b, a.cfg, a.log)
	if err != nil {
		return err
	}

	var crawlErr error
	for l, err := range crawler.Crawl(ctx, req) {
		if err != nil {
			crawlErr = err
			continue
		}
		res.Listings++
		a.log.Info("📦 Listing", logger.String("company", l.CompanyName), logger.String("title", l.PostingTitle))
		if err := sink.Emit(ctx, l); err != nil {
			res.SinkErrors++
			a.log.Warn("⚠️ Sink rejected listing", logger.String("company", l.CompanyName), logger.Error(err))
		}
	}
	return crawlErr
}

func (a *App) notifyStatus(msg string) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.SendStatus(msg); err != nil {
		a.log.Warn("⚠️ Failed to send status", logger.Error(err))
	}
}

func (a *App) notifyError(runErr error) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.SendError(runErr); err != nil {
		a.log.Warn("⚠️ Failed to send error", logger.Error(err))
	}
}
