package jasoseol

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/dom/domtest"

	"github.com/stretchr/testify/require"
)

const (
	baseURL     = "https://jasoseol.com"
	calendarURL = "https://jasoseol.com/recruit"
)

// testConfig returns a config with every wait and pause at zero.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Crawl.Timeouts = config.Timeouts{}
	cfg.Crawl.DetailPagesPerMinute = 0
	cfg.StatePath = filepath.Join(dir, "state", "state.json")
	cfg.ScreenshotDir = filepath.Join(dir, "shots")
	cfg.LoginID = "user@example.com"
	cfg.LoginPassword = "secret"
	return cfg
}

func usableState() []byte {
	exp := strconv.FormatInt(time.Now().Add(24*time.Hour).Unix(), 10)
	return []byte(`{"cookies":[{"name":"sid","value":"x","domain":"jasoseol.com","path":"/","expires":` + exp + `}],"origins":[]}`)
}

func writeState(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, usableState(), 0o600))
}

// loginSite serves a landing page whose login modal succeeds when submitted.
// confirm decides what the page shows after submit.
func loginSite(site *domtest.Site, confirm func(root *domtest.Element)) {
	site.Handle(baseURL, func() *domtest.Element {
		root := domtest.New("")

		promo := domtest.New("광고")
		closePromo := domtest.New("닫기")
		closePromo.OnClick = func() error {
			root.Drop(selPromo)
			root.Drop(selPromoClose)
			return nil
		}
		root.Add(selPromo, promo)
		root.Add(selPromoClose, closePromo)

		submit := domtest.New("로그인")
		submit.OnClick = func() error {
			confirm(root)
			return nil
		}

		open := domtest.New("회원가입/로그인")
		open.OnClick = func() error {
			root.Add(selLoginID, domtest.New(""))
			root.Add(selLoginPassword, domtest.New(""))
			root.Add(selLoginSubmit, submit)
			return nil
		}
		root.Add(selLoginOpen, open)
		return root
	})
}

func loginSucceeds(root *domtest.Element) {
	root.Add(selLoginSuccess, domtest.New("홍길동님의 맞춤공고예요."))
}

// dayFixture builds the items of one day; root is the calendar page so
// overlays can attach to it.
type dayFixture func(root *domtest.Element) []*domtest.Element

type monthView struct {
	label string
	days  map[string]dayFixture
}

type calendarControls struct {
	next, prev *domtest.Element
}

// calendarSite serves a calendar showing views[start], with working month
// controls. The returned controls are replaced on every navigation.
func calendarSite(site *domtest.Site, views []monthView, start int) *calendarControls {
	ctrl := &calendarControls{}
	site.Handle(calendarURL, func() *domtest.Element {
		root := domtest.New("")
		label := domtest.New(views[start].label)
		root.Add(selMonthLabel, label)

		idx := start
		show := func(i int) {
			for date := range views[idx].days {
				root.Drop(daySelector(date))
			}
			idx = i
			label.Label = views[i].label
			for date, build := range views[i].days {
				day := domtest.New("").Add(selDayItems, build(root)...)
				root.Add(daySelector(date), day)
			}
		}
		show(start)

		ctrl.next = domtest.New(">")
		ctrl.next.OnClick = func() error {
			if idx+1 < len(views) {
				show(idx + 1)
			}
			return nil
		}
		ctrl.prev = domtest.New("<")
		ctrl.prev.OnClick = func() error {
			if idx > 0 {
				show(idx - 1)
			}
			return nil
		}
		root.Add(selNextMonth, ctrl.next)
		root.Add(selPrevMonth, ctrl.prev)
		return root
	})
	return ctrl
}

func entry(name, id, href, label string) *domtest.Element {
	item := domtest.New("")
	if id != "" {
		item.WithAttr(attrExternalID, id)
	}
	if href != "" {
		item.Add(selDirectLink, domtest.New("").WithAttr(attrHref, href))
	}
	if name != "" {
		item.Add(selCompanyName, domtest.New(name))
	}
	if label != "" {
		item.Add(selLabel, domtest.New(label))
	}
	return item
}

// subEntry is an overlay row; its link uses the overlay anchor class.
func subEntry(name, id, href, label string) *domtest.Element {
	item := domtest.New("").WithAttr(attrExternalID, id)
	item.Add("a.employment-company-anchor", domtest.New("").WithAttr(attrHref, href))
	if name != "" {
		item.Add(selCompanyName, domtest.New(name))
	}
	if label != "" {
		item.Add(selLabel, domtest.New(label))
	}
	return item
}

// groupEntry opens an overlay with subs when clicked. The overlay's close
// button hides it unless stuckClose is set.
func groupEntry(root *domtest.Element, title string, stuckClose bool, subs ...*domtest.Element) *domtest.Element {
	item := domtest.New("")
	item.Add(selGroupMarker, domtest.New(title).WithAttr("period", "start"))
	item.OnClick = func() error {
		modal := domtest.New("")
		modal.Add(selOverlayTitle, domtest.New(title))
		modal.Add(selGroupItem, subs...)

		closeBtn := domtest.New("닫기")
		closeBtn.OnClick = func() error {
			if !stuckClose {
				root.Drop(selOverlay)
			}
			return nil
		}
		modal.Add(selOverlayClose, closeBtn)
		root.Add(selOverlay, modal)
		return nil
	}
	return item
}

type jobSpec struct {
	title, kind string
	essays      [][2]string
}

// detailPage serves a posting page with an end-date block, an apply link and jobs.
func detailPage(site *domtest.Site, url, endDate string, jobs ...jobSpec) {
	site.Handle(url, func() *domtest.Element {
		root := domtest.New("")

		block := domtest.New("").Add("span",
			domtest.New("접수기간"),
			domtest.New("2025년 1월 1일 10:00"),
			domtest.New(endDate),
			domtest.New("D-9"),
		)
		root.Add(selEndDateBlock, block)
		root.Add(selApplyLink, domtest.New("채용 사이트").WithAttr(attrHref, "https://careers.example.com/apply"))

		list := domtest.New("")
		for _, j := range jobs {
			list.Add(selJobItem, jobItem(j))
		}
		root.Add("ul.shadow2", list)
		return root
	})
}

func jobItem(j jobSpec) *domtest.Element {
	li := domtest.New("")
	li.Add("span.text-gray-900.body2", domtest.New(j.title))
	if j.kind != "" {
		li.Add("span.label1_bold.text-secondary-700", domtest.New(j.kind))
	}
	if len(j.essays) == 0 {
		return li
	}

	btn := domtest.New("자기소개서 쓰기")
	btn.OnClick = func() error {
		if li.Has(selEssayBlock) {
			return nil
		}
		for _, e := range j.essays {
			block := domtest.New("")
			block.Add(`div.text-\[14px\]`, domtest.New(e[0]))
			if e[1] != "" {
				block.Add("div.text-gray-500.caption1", domtest.New(e[1]))
			}
			li.Add(selEssayBlock, block)
		}
		return nil
	}
	li.Add(selEssayButton, btn)
	return li
}

func items(els ...*domtest.Element) dayFixture {
	return func(*domtest.Element) []*domtest.Element {
		return els
	}
}
