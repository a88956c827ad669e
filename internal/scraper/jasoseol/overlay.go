package jasoseol

import (
	"context"
	"errors"
	"fmt"

	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"
)

// ErrOverlayInteraction covers a grouped entry whose overlay could not be
// opened or read.
var ErrOverlayInteraction = errors.New("overlay interaction failed")

// extractGroup handles an entry that stands for several postings. Sub-entries
// rendered inline are read in place; otherwise the overlay is opened and
// always closed again.
func (x *Extractor) extractGroup(ctx context.Context, page dom.Page, item dom.Element, date string, mode scraper.Mode) ([]scraper.Listing, error) {
	inline, err := item.QueryAll(selGroupItem)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverlayInteraction, err)
	}
	if len(inline) > 0 {
		return x.subEntries(inline, date, mode, ""), nil
	}

	defer x.closeOverlayIfOpen(page)

	if err := item.ScrollIntoView(); err != nil {
		x.log.Debug("Scroll into view failed", logger.Error(err))
	}
	if err := item.Click(x.t.Click); err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrOverlayInteraction, err)
	}
	if err := page.WaitVisible(selOverlay, x.t.Overlay); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverlayInteraction, err)
	}
	if err := page.WaitNetworkIdle(x.t.OverlayIdle); err != nil {
		x.log.Debug("Overlay network not idle, reading anyway", logger.Error(err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modal, err := page.Query(selOverlay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverlayInteraction, err)
	}
	subs, err := modal.QueryAll(selGroupItem)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverlayInteraction, err)
	}

	title := textOf(modal, selOverlayTitle)
	x.log.Info("🗂️ Overlay opened", logger.String("title", title), logger.Int("entries", len(subs)))
	return x.subEntries(subs, date, mode, title), nil
}

func (x *Extractor) subEntries(subs []dom.Element, date string, mode scraper.Mode, groupTitle string) []scraper.Listing {
	var out []scraper.Listing
	for _, sub := range subs {
		if !labelAccepts(sub, mode) {
			continue
		}
		if l, ok := x.listingFrom(sub, date, groupTitle); ok {
			out = append(out, l)
		}
	}
	return out
}

// closeOverlayIfOpen clicks the close button and waits for the overlay to
// hide, removing it from the DOM if that does not work. Safe to call twice.
func (x *Extractor) closeOverlayIfOpen(page dom.Page) {
	modal, err := page.Query(selOverlay)
	if err != nil {
		return
	}

	if btn, err := modal.Query(selOverlayClose); err == nil {
		if err := btn.Click(x.t.Click); err == nil {
			if err := page.WaitHidden(selOverlay, x.t.OverlayClose); err == nil {
				return
			}
		}
	}

	if err := page.Remove(selOverlay); err != nil {
		x.log.Warn("⚠️ Could not remove overlay", logger.Error(err))
		return
	}
	x.log.Debug("Overlay removed from DOM")
}
