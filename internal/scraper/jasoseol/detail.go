package jasoseol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jss-crawler/internal/browser"
	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"

	"golang.org/x/time/rate"
)

var (
	// ErrDetailNavigation means the detail page never loaded; the listing is skipped.
	ErrDetailNavigation = errors.New("detail page navigation failed")
	// ErrFieldExtraction marks one unreadable field; the listing is kept.
	ErrFieldExtraction = errors.New("field extraction failed")
)

// Enricher fills end date, apply link and jobs from a listing's detail page.
type Enricher struct {
	t       config.Timeouts
	limiter *rate.Limiter
	log     logger.Logger
}

// NewEnricher paces page visits to perMinute; 0 disables pacing.
func NewEnricher(t config.Timeouts, perMinute int, log logger.Logger) *Enricher {
	e := &Enricher{t: t, log: log.With(logger.String("component", "detail"))}
	if perMinute > 0 {
		e.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return e
}

// Enrich visits l.Link in a new page of sess and fills what it can. Only a
// navigation failure is returned; field failures are logged.
func (e *Enricher) Enrich(ctx context.Context, sess dom.Session, l *scraper.Listing) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	log := e.log.With(logger.String("company", l.CompanyName), logger.String("url", l.Link))
	log.Info("📄 Enriching listing")

	page, err := sess.NewPage()
	if err != nil {
		return fmt.Errorf("%w: new page: %w", ErrDetailNavigation, err)
	}
	defer page.Close()

	if err := page.Goto(l.Link, e.t.Navigation); err != nil {
		return fmt.Errorf("%w: %w", ErrDetailNavigation, err)
	}
	if err := page.WaitNetworkIdle(e.t.NetworkIdle); err != nil {
		log.Debug("Detail page network not idle, continuing", logger.Error(err))
	}
	dismissPopup(page, e.t.Popup)

	if end, err := e.endDate(page); err != nil {
		log.Warn("⚠️ End date not read", logger.Error(err))
	} else {
		l.EndDate = &end
	}

	if link, err := e.applyLink(page); err != nil {
		log.Warn("⚠️ Apply link not read", logger.Error(err))
	} else {
		l.ApplyLink = link
	}

	jobs, err := e.jobs(ctx, page, log)
	if err != nil {
		log.Warn("⚠️ Jobs not read", logger.Error(err))
	}
	if jobs != nil {
		l.Jobs = jobs
	}

	log.Info("✅ Listing enriched",
		logger.String("end_date", scraper.Deref(l.EndDate)),
		logger.Int("jobs", len(l.Jobs)),
	)
	return nil
}

func (e *Enricher) endDate(page dom.Page) (string, error) {
	if err := page.WaitFor(selEndDateBlock, e.t.EndDate); err != nil {
		return "", fieldErr("end date", err)
	}
	block, err := page.Query(selEndDateBlock)
	if err != nil {
		return "", fieldErr("end date", err)
	}
	spans, err := block.QueryAll("span")
	if err != nil {
		return "", fieldErr("end date", err)
	}
	if len(spans) <= endDateSpan {
		return "", fieldErr("end date", fmt.Errorf("block has %d spans", len(spans)))
	}

	text := textOfElement(spans[endDateSpan])
	if !filter.LooksLikeEndDate(text) {
		return "", fieldErr("end date", fmt.Errorf("unexpected value %q", text))
	}
	return text, nil
}

// applyLink returns nil without error when the posting has no external site.
func (e *Enricher) applyLink(page dom.Page) (*string, error) {
	a, err := page.Query(selApplyLink)
	if dom.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fieldErr("apply link", err)
	}
	href, err := a.Attr(attrHref)
	if err != nil {
		return nil, fieldErr("apply link", err)
	}
	return scraper.Ptr(href), nil
}

func (e *Enricher) jobs(ctx context.Context, page dom.Page, log logger.Logger) ([]scraper.Job, error) {
	container, sel, err := jobContainer.First(page)
	if err != nil {
		return nil, fieldErr("jobs", err)
	}
	log.Debug("Job container found", logger.String("selector", sel))

	if err := container.WaitFor(selJobItem, e.t.JobList); err != nil {
		return nil, fieldErr("jobs", err)
	}
	items, err := container.QueryAll(selJobItem)
	if err != nil {
		return nil, fieldErr("jobs", err)
	}

	jobs := make([]scraper.Job, 0, len(items))
	for i, li := range items {
		if err := ctx.Err(); err != nil {
			return jobs, err
		}

		job := scraper.Job{EssayQuestions: []scraper.EssayQuestion{}}
		if title, err := jobTitle.Text(li); err == nil {
			job.Title = scraper.Ptr(title)
		}
		if kind, err := jobType.Text(li); err == nil {
			job.PostingType = scraper.Ptr(kind)
		}

		essays, err := e.essays(ctx, li)
		if err != nil {
			log.Warn("⚠️ Essay questions not read", logger.Int("job", i), logger.Error(err))
		}
		if len(essays) > 0 {
			job.EssayQuestions = essays
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// essays opens the essay panel of a job item and reads question/limit pairs.
// Blocks missing either half are skipped.
func (e *Enricher) essays(ctx context.Context, li dom.Element) ([]scraper.EssayQuestion, error) {
	btn, err := li.Query(selEssayButton)
	if dom.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fieldErr("essays", err)
	}

	if err := btn.ScrollIntoView(); err != nil {
		e.log.Debug("Essay button scroll failed", logger.Error(err))
	}
	if err := btn.Click(e.t.Click); err != nil {
		return nil, fieldErr("essays", err)
	}
	if err := browser.Pause(ctx, e.t.EssaySettle); err != nil {
		return nil, err
	}
	if err := li.WaitFor(selEssayBlock, e.t.EssayBlocks); err != nil {
		return nil, fieldErr("essays", err)
	}

	blocks, err := li.QueryAll(selEssayBlock)
	if err != nil {
		return nil, fieldErr("essays", err)
	}

	var out []scraper.EssayQuestion
	for _, b := range blocks {
		q, qErr := essayQuestion.Text(b)
		limit, lErr := essayLimit.Text(b)
		if qErr != nil || lErr != nil || q == "" || limit == "" {
			continue
		}
		out = append(out, scraper.EssayQuestion{Question: q, Limit: &limit})
	}
	return out, nil
}

// dismissPopup clicks the first popup close control, if any.
func dismissPopup(page dom.Page, timeout time.Duration) {
	if btn, _, err := popup.First(page); err == nil {
		_ = btn.Click(timeout)
	}
}

func textOfElement(el dom.Element) string {
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func fieldErr(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFieldExtraction, field, err)
}
