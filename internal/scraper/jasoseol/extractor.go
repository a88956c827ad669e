package jasoseol

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/filter"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"
)

// Extractor turns one day container into basic listings.
type Extractor struct {
	base *url.URL
	t    config.Timeouts
	log  logger.Logger
}

func NewExtractor(baseURL string, t config.Timeouts, log logger.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Extractor{base: base, t: t, log: log.With(logger.String("component", "extractor"))}, nil
}

// ExtractDay reads every entry of the day in DOM order. Entries that fail are
// logged and skipped; names filters the result (empty keeps everything).
func (x *Extractor) ExtractDay(ctx context.Context, page dom.Page, day dom.Element, date string, mode scraper.Mode, names []string) []scraper.Listing {
	items, err := day.QueryAll(selDayItems)
	if err != nil {
		x.log.Warn("⚠️ Could not list calendar items", logger.String("date", date), logger.Error(err))
		return nil
	}
	x.log.Info("🔍 Calendar items found", logger.String("date", date), logger.Int("count", len(items)))

	var out []scraper.Listing
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}

		found, err := x.extractEntry(ctx, page, item, date, mode)
		if err != nil {
			x.log.Warn("⚠️ Skipping calendar item", logger.Int("index", i), logger.Error(err))
		}

		for _, l := range found {
			if !filter.MatchesAny(l.CompanyName, names) {
				continue
			}
			x.log.Debug("Listing passed filter", logger.String("company", l.CompanyName))
			out = append(out, l)
		}
	}
	return out
}

func (x *Extractor) extractEntry(ctx context.Context, page dom.Page, item dom.Element, date string, mode scraper.Mode) ([]scraper.Listing, error) {
	_, linkErr := item.Query(selDirectLink)
	if linkErr == nil && hasLabel(item, mode) {
		return x.single(item, date, ""), nil
	}

	if _, err := item.Query(selGroupMarker); err == nil {
		return x.extractGroup(ctx, page, item, date, mode)
	}

	if !labelAccepts(item, mode) {
		return nil, nil
	}
	return x.single(item, date, ""), nil
}

func (x *Extractor) single(item dom.Element, date, fallbackName string) []scraper.Listing {
	l, ok := x.listingFrom(item, date, fallbackName)
	if !ok {
		return nil
	}
	return []scraper.Listing{l}
}

// listingFrom builds a basic listing from an entry. Entries without a name or
// a link are dropped.
func (x *Extractor) listingFrom(item dom.Element, date, fallbackName string) (scraper.Listing, bool) {
	name := textOf(item, selCompanyName)
	if name == "" {
		name = fallbackName
	}

	var href string
	if link, _, err := entryLink.First(item); err == nil {
		href, _ = link.Attr(attrHref)
	}
	href = strings.TrimSpace(href)

	if name == "" || href == "" {
		x.log.Debug("Entry without name or link", logger.String("company", name), logger.String("href", href))
		return scraper.Listing{}, false
	}

	id, _ := item.Attr(attrExternalID)
	title := textOf(item, selGroupItemTitle)
	return scraper.NewListing(name, title, x.resolve(href), date, id), true
}

func (x *Extractor) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return x.base.ResolveReference(ref).String()
}

// hasLabel reports whether the entry carries the badge of mode.
func hasLabel(item dom.Element, mode scraper.Mode) bool {
	label, ok := labelOf(item)
	return ok && label == mode.Label()
}

// labelAccepts applies the label policy: a badge must match mode, and an
// entry without a badge only counts as a start.
func labelAccepts(item dom.Element, mode scraper.Mode) bool {
	label, ok := labelOf(item)
	if !ok {
		return mode == scraper.ModeStart
	}
	return label == mode.Label()
}

func labelOf(item dom.Element) (string, bool) {
	el, err := item.Query(selLabel)
	if err != nil {
		return "", false
	}
	text, err := el.Text()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

func textOf(scope dom.Element, selector string) string {
	el, err := scope.Query(selector)
	if err != nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
