package jasoseol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-jss-crawler/internal/browser"
	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
)

// ErrDateNotFound means the day is not reachable on the calendar. Callers treat
// it as "no listings", never as a failure.
var ErrDateNotFound = errors.New("date not found on calendar")

// Navigator pages the month calendar until a day container shows up.
type Navigator struct {
	t        config.Timeouts
	maxPages int
	log      logger.Logger
}

func NewNavigator(t config.Timeouts, maxPages int, log logger.Logger) *Navigator {
	return &Navigator{t: t, maxPages: maxPages, log: log.With(logger.String("component", "calendar"))}
}

// Resolve returns the container of date, paging forward at most maxPages months.
func (n *Navigator) Resolve(ctx context.Context, page dom.Page, date string) (dom.Element, error) {
	sel := daySelector(date)

	if err := page.WaitFor(sel, n.t.DayLookup); err == nil {
		return page.Query(sel)
	}

	for attempt := 1; attempt <= n.maxPages; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := n.step(ctx, page, selNextMonth); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDateNotFound, date, err)
		}

		day, err := page.Query(sel)
		if err == nil {
			n.log.Info("📅 Day found", logger.String("date", date), logger.Int("pages", attempt))
			return day, nil
		}
		if !dom.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrDateNotFound, date, err)
		}
	}

	return nil, fmt.Errorf("%w: %s not within %d months", ErrDateNotFound, date, n.maxPages)
}

// StepBackIfAfter pages back while the displayed month is later than date's month.
func (n *Navigator) StepBackIfAfter(ctx context.Context, page dom.Page, date string) error {
	day, err := filter.ParseDay(date)
	if err != nil {
		return err
	}
	target := filter.MonthOf(day)

	for attempt := 0; attempt < n.maxPages; attempt++ {
		current, err := n.CurrentMonth(page)
		if err != nil {
			return err
		}
		if !current.After(target) {
			return nil
		}
		n.log.Info("⬅️ Moving to previous month", logger.String("from", current.String()), logger.String("to", target.String()))
		if err := n.step(ctx, page, selPrevMonth); err != nil {
			return err
		}
	}
	return nil
}

// CurrentMonth parses the month the calendar is showing.
func (n *Navigator) CurrentMonth(page dom.Page) (filter.Month, error) {
	label, err := monthLabel(page)
	if err != nil {
		return filter.Month{}, err
	}
	return filter.ParseMonthLabel(label)
}

// step clicks a month control and waits for the label to re-render.
func (n *Navigator) step(ctx context.Context, page dom.Page, control string) error {
	btn, err := page.Query(control)
	if err != nil {
		return fmt.Errorf("month control %q: %w", control, err)
	}

	previous, _ := monthLabel(page)
	if err := btn.Click(n.t.Click); err != nil {
		return fmt.Errorf("click month control: %w", err)
	}
	if err := page.WaitTextChange(selMonthLabel, previous, n.t.MonthChange); err != nil {
		return fmt.Errorf("month label stuck at %q: %w", previous, err)
	}
	return browser.Pause(ctx, n.t.MonthSettle)
}

func monthLabel(page dom.Page) (string, error) {
	el, err := page.Query(selMonthLabel)
	if err != nil {
		return "", fmt.Errorf("month label: %w", err)
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
