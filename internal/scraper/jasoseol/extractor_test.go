package jasoseol

import (
	"context"
	"errors"
	"testing"

	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/dom/domtest"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	x, err := NewExtractor(baseURL, config.Timeouts{}, logger.NewNop())
	require.NoError(t, err)
	return x
}

// extractDay serves one day built by fixture and runs the extractor on it.
func extractDay(t *testing.T, fixture dayFixture, mode scraper.Mode, names []string) ([]scraper.Listing, *domtest.Page) {
	t.Helper()
	site := domtest.NewSite()
	calendarSite(site, []monthView{{label: "2025.01", days: map[string]dayFixture{"20250101": fixture}}}, 0)
	page := openCalendarPage(t, site)

	day, err := page.Query(daySelector("20250101"))
	require.NoError(t, err)
	return newExtractor(t).ExtractDay(context.Background(), page, day, "20250101", mode, names), page
}

func companies(ls []scraper.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.CompanyName
	}
	return out
}

func TestExtractDay_DirectEntries(t *testing.T) {
	got, _ := extractDay(t, items(
		entry("Acme Corp", "101", "/employment/101", "시"),
		entry("Late Inc", "102", "/employment/102", "끝"),
		entry("", "103", "/employment/103", "시"),
		entry("No Link", "104", "", "시"),
	), scraper.ModeStart, nil)

	require.Len(t, got, 1)
	l := got[0]
	assert.Equal(t, "Acme Corp", l.CompanyName)
	assert.Equal(t, "https://jasoseol.com/employment/101", l.Link)
	assert.Equal(t, "101", scraper.Deref(l.ExternalID))
	assert.Equal(t, "20250101", l.StartDate)
	assert.Equal(t, "Acme Corp 채용 공고", l.PostingTitle)
	assert.Empty(t, l.Jobs)
}

func TestExtractDay_LabelPolicy(t *testing.T) {
	fixture := items(
		entry("Starts", "1", "/e/1", "시"),
		entry("Ends", "2", "/e/2", "끝"),
		entry("Unlabeled", "3", "https://other.example.com/e/3", ""),
	)

	start, _ := extractDay(t, fixture, scraper.ModeStart, nil)
	assert.Equal(t, []string{"Starts", "Unlabeled"}, companies(start))
	assert.Equal(t, "https://other.example.com/e/3", start[1].Link, "absolute links are kept")

	end, _ := extractDay(t, fixture, scraper.ModeEnd, nil)
	assert.Equal(t, []string{"Ends"}, companies(end))
}

func TestExtractDay_NameFilter(t *testing.T) {
	got, _ := extractDay(t, items(
		entry("ACME Corporation", "1", "/e/1", "시"),
		entry("Zenith", "2", "/e/2", "시"),
		entry("Other", "3", "/e/3", "시"),
	), scraper.ModeStart, []string{" acme ", "zen"})

	assert.Equal(t, []string{"ACME Corporation", "Zenith"}, companies(got))
}

func TestExtractDay_InlineGroup(t *testing.T) {
	group := domtest.New("")
	group.Add(selGroupMarker, domtest.New("3건"))
	group.Add(selGroupItem,
		subEntry("Alpha", "11", "/e/11", "시"),
		subEntry("Beta", "12", "/e/12", "끝"),
	)

	got, page := extractDay(t, items(group), scraper.ModeStart, nil)
	assert.Equal(t, []string{"Alpha"}, companies(got))
	assert.Zero(t, group.Clicks, "inline groups need no overlay")
	assert.Empty(t, page.Removed)
}

func TestExtractDay_OverlayGroup(t *testing.T) {
	var group *domtest.Element
	got, page := extractDay(t, func(root *domtest.Element) []*domtest.Element {
		titled := subEntry("Zenith", "21", "/e/21", "시")
		titled.Add(selGroupItemTitle, domtest.New("2025 상반기 신입 공채"))
		group = groupEntry(root, "Zenith Group", false,
			titled,
			subEntry("", "22", "/e/22", "시"),
			subEntry("Ender", "23", "/e/23", "끝"),
		)
		return []*domtest.Element{group}
	}, scraper.ModeStart, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "Zenith", got[0].CompanyName)
	assert.Equal(t, "2025 상반기 신입 공채", got[0].PostingTitle)
	assert.Equal(t, "https://jasoseol.com/e/21", got[0].Link)
	assert.Equal(t, "Zenith Group", got[1].CompanyName, "falls back to the overlay title")

	assert.Equal(t, 1, group.Clicks)
	assert.Equal(t, 1, group.Scrolls)
	assert.False(t, page.Has(selOverlay), "overlay closed")
	assert.Empty(t, page.Removed, "closed by its button")
}

func TestExtractDay_OverlayEndMode(t *testing.T) {
	got, page := extractDay(t, func(root *domtest.Element) []*domtest.Element {
		return []*domtest.Element{groupEntry(root, "Group", false,
			subEntry("Starter", "31", "/e/31", "시"),
			subEntry("Unlabeled", "32", "/e/32", ""),
			subEntry("Ender", "33", "/e/33", "끝"),
		)}
	}, scraper.ModeEnd, nil)

	//an opened overlay does not make unlabeled rows count as deadlines
	assert.Equal(t, []string{"Ender"}, companies(got))
	assert.False(t, page.Has(selOverlay))
}

func TestExtractDay_OverlayForcedRemoval(t *testing.T) {
	got, page := extractDay(t, func(root *domtest.Element) []*domtest.Element {
		return []*domtest.Element{groupEntry(root, "Stuck", true, subEntry("Alpha", "1", "/e/1", "시"))}
	}, scraper.ModeStart, nil)

	assert.Equal(t, []string{"Alpha"}, companies(got))
	assert.Equal(t, []string{selOverlay}, page.Removed)
	assert.False(t, page.Has(selOverlay))
}

func TestExtractDay_OverlayFailureStillCloses(t *testing.T) {
	var closeBtn *domtest.Element
	got, page := extractDay(t, func(root *domtest.Element) []*domtest.Element {
		broken := domtest.New("")
		broken.Add(selGroupMarker, domtest.New("2건"))
		broken.OnClick = func() error {
			modal := domtest.New("")
			modal.QueryErrs = map[string]error{selGroupItem: errors.New("node detached")}
			closeBtn = domtest.New("닫기")
			closeBtn.OnClick = func() error {
				root.Drop(selOverlay)
				return nil
			}
			modal.Add(selOverlayClose, closeBtn)
			root.Add(selOverlay, modal)
			return nil
		}
		return []*domtest.Element{broken, entry("After", "9", "/e/9", "시")}
	}, scraper.ModeStart, nil)

	assert.Equal(t, []string{"After"}, companies(got), "failing entry is skipped, the rest continue")
	require.NotNil(t, closeBtn)
	assert.Equal(t, 1, closeBtn.Clicks)
	assert.False(t, page.Has(selOverlay))
}

func TestExtractGroup_OverlayNeverOpens(t *testing.T) {
	site := domtest.NewSite()
	site.Handle(calendarURL, func() *domtest.Element { return domtest.New("") })
	page := openCalendarPage(t, site)

	group := domtest.New("")
	group.Add(selGroupMarker, domtest.New("2건"))

	_, err := newExtractor(t).extractGroup(context.Background(), page, group, "20250101", scraper.ModeStart)
	assert.ErrorIs(t, err, ErrOverlayInteraction)
	assert.ErrorIs(t, err, dom.ErrTimeout)
	assert.Empty(t, page.Removed)
}

func TestCloseOverlayIfOpen_Idempotent(t *testing.T) {
	site := domtest.NewSite()
	site.Handle(calendarURL, func() *domtest.Element {
		root := domtest.New("")
		root.Add(selOverlay, domtest.New(""))
		return root
	})
	page := openCalendarPage(t, site)
	x := newExtractor(t)

	x.closeOverlayIfOpen(page)
	x.closeOverlayIfOpen(page)

	assert.Equal(t, []string{selOverlay}, page.Removed)
}
