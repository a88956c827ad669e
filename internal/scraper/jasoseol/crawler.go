package jasoseol

import (
	"context"
	"fmt"
	"iter"

	"go-jss-crawler/internal/browser"
	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dedup"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"
)

// ErrInvalidDate rejects a request date that is not YYYYMMDD.
var ErrInvalidDate = filter.ErrInvalidDay

// Crawler crawls the jasoseol recruit calendar.
type Crawler struct {
	sessions    *SessionManager
	nav         *Navigator
	extractor   *Extractor
	enricher    *Enricher
	calendarURL string
	t           config.Timeouts
	shots       *browser.ScreenshotDebugger
	log         logger.Logger
}

func New(b dom.Browser, cfg *config.Config, log logger.Logger) (*Crawler, error) {
	t := cfg.Crawl.Timeouts
	shots := browser.NewScreenshotDebugger(cfg.ScreenshotDir, log)

	extractor, err := NewExtractor(cfg.Site.BaseURL, t, log)
	if err != nil {
		return nil, err
	}

	return &Crawler{
		sessions:    NewSessionManager(b, cfg, shots, log),
		nav:         NewNavigator(t, cfg.Crawl.MaxMonthPages, log),
		extractor:   extractor,
		enricher:    NewEnricher(t, cfg.Crawl.DetailPagesPerMinute, log),
		calendarURL: cfg.Site.CalendarURL,
		t:           t,
		shots:       shots,
		log:         log.With(logger.String("scraper", "jasoseol")),
	}, nil
}

func (c *Crawler) Name() string {
	return "jasoseol"
}

// Crawl streams the listings of req.Date, then of the day before when a name
// filter found nothing. Only ErrLoginFailed and ErrInvalidDate are yielded as
// errors; everything else degrades to fewer listings.
func (c *Crawler) Crawl(ctx context.Context, req scraper.Request) iter.Seq2[scraper.Listing, error] {
	return func(yield func(scraper.Listing, error) bool) {
		if _, err := filter.ParseDay(req.Date); err != nil {
			yield(scraper.Listing{}, err)
			return
		}
		if req.Mode == "" {
			req.Mode = scraper.ModeStart
		}

		log := c.log.With(logger.String("date", req.Date), logger.Strings("companies", req.Companies))
		log.Info("🚀 Starting crawl", logger.String("mode", string(req.Mode)))

		sess, err := c.sessions.Ensure(ctx)
		if err != nil {
			log.Error("❌ Session not ready", logger.Error(err))
			yield(scraper.Listing{}, err)
			return
		}
		defer sess.Close()

		page, err := sess.NewPage()
		if err != nil {
			log.Error("❌ Could not open calendar page", logger.Error(err))
			return
		}
		defer page.Close()

		if err := c.openCalendar(page); err != nil {
			_, _ = c.shots.CaptureAndLog(page, "calendar_"+req.Date, "Calendar load failed")
			log.Error("❌ Calendar load failed", logger.Error(err))
			return
		}

		r := &run{Crawler: c, sess: sess, page: page, req: req, seen: dedup.NewSet(), yield: yield, log: log}
		if !r.pass(ctx, req.Date) {
			return
		}

		if !r.needsFallback() {
			log.Info("🏁 Crawl finished", logger.Int("listings", r.seen.Len()))
			return
		}

		prev, _ := filter.PreviousDay(req.Date)
		log.Info("↩️ Requested companies not found, trying previous day", logger.String("previous", prev))
		if err := c.nav.StepBackIfAfter(ctx, page, prev); err != nil {
			log.Warn("⚠️ Could not move to previous month", logger.Error(err))
		}
		if !r.pass(ctx, prev) {
			return
		}
		log.Info("🏁 Crawl finished", logger.Int("listings", r.seen.Len()))
	}
}

func (c *Crawler) openCalendar(page dom.Page) error {
	if err := page.Goto(c.calendarURL, c.t.Navigation); err != nil {
		return fmt.Errorf("open calendar: %w", err)
	}
	if err := page.WaitNetworkIdle(c.t.NetworkIdle); err != nil {
		c.log.Debug("Calendar network not idle, continuing", logger.Error(err))
	}
	dismissPopup(page, c.t.Popup)
	return nil
}

// run is the state of one Crawl invocation.
type run struct {
	*Crawler
	sess  dom.Session
	page  dom.Page
	req   scraper.Request
	seen  *dedup.Set
	yield func(scraper.Listing, error) bool
	log   logger.Logger
}

// pass crawls one calendar day. It returns false once the consumer stopped or
// ctx is done.
func (r *run) pass(ctx context.Context, date string) bool {
	day, err := r.nav.Resolve(ctx, r.page, date)
	if err != nil {
		r.log.Warn("⚠️ Day not on calendar", logger.String("day", date), logger.Error(err))
		return ctx.Err() == nil
	}

	listings := r.extractor.ExtractDay(ctx, r.page, day, date, r.req.Mode, r.req.Companies)
	r.log.Info("📋 Listings extracted", logger.String("day", date), logger.Int("count", len(listings)))

	for i := range listings {
		l := listings[i]
		key := l.DedupKey()
		if r.seen.IsSeen(key) {
			r.log.Debug("Duplicate listing skipped", logger.String("key", key))
			continue
		}

		if err := r.enricher.Enrich(ctx, r.sess, &l); err != nil {
			if ctx.Err() != nil {
				return false
			}
			r.log.Warn("⚠️ Listing skipped", logger.String("company", l.CompanyName), logger.Error(err))
			continue
		}

		r.seen.Add(key, l.CompanyName)
		if !r.yield(l, nil) {
			return false
		}
	}
	return ctx.Err() == nil
}

// needsFallback is true when a name filter is set and none of its names shows
// up in an emitted company name.
func (r *run) needsFallback() bool {
	if len(r.req.Companies) == 0 {
		return false
	}
	return !r.seen.ContainsAnyName(r.req.Companies)
}

var _ scraper.Crawler = (*Crawler)(nil)
