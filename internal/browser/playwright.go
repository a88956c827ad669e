package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/logger"

	"github.com/playwright-community/playwright-go"
)

// Options configures the launched Chromium and every context made from it.
type Options struct {
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	// BlockResources lists Playwright resource types aborted on every page.
	BlockResources []string
}

// PlaywrightManager owns the driver and one Chromium instance.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     logger.Logger
}

// NewPlaywright starts the driver and launches Chromium.
func NewPlaywright(opts Options, log logger.Logger) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-extensions",
			"--disable-gpu",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	log.Info("🌐 Browser launched", logger.Bool("headless", opts.Headless))
	return &PlaywrightManager{pw: pw, browser: b, opts: opts, log: log}, nil
}

// NewSession opens a browser context, restored from statePath when it is set.
func (pm *PlaywrightManager) NewSession(statePath string) (dom.Session, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(pm.opts.UserAgent),
	}
	if pm.opts.ViewportWidth > 0 && pm.opts.ViewportHeight > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: pm.opts.ViewportWidth, Height: pm.opts.ViewportHeight}
	}
	if statePath != "" {
		ctxOpts.StorageStatePath = playwright.String(statePath)
	}

	bctx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	if len(pm.opts.BlockResources) > 0 {
		blocked := make(map[string]bool, len(pm.opts.BlockResources))
		for _, t := range pm.opts.BlockResources {
			blocked[t] = true
		}
		err := bctx.Route("**/*", func(route playwright.Route) {
			if blocked[route.Request().ResourceType()] {
				_ = route.Abort()
				return
			}
			_ = route.Continue()
		})
		if err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("install resource filter: %w", err)
		}
	}

	return &session{ctx: bctx}, nil
}

func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.browser != nil {
		errs = append(errs, pm.browser.Close())
	}
	if pm.pw != nil {
		errs = append(errs, pm.pw.Stop())
	}
	return errors.Join(errs...)
}

type session struct {
	ctx playwright.BrowserContext
}

func (s *session) NewPage() (dom.Page, error) {
	p, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	return newPage(p), nil
}

func (s *session) SaveState(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if _, err := s.ctx.StorageState(path); err != nil {
		return fmt.Errorf("save storage state: %w", err)
	}
	return nil
}

func (s *session) Close() error {
	return s.ctx.Close()
}

// element adapts a Locator. locate resolves child selectors; for a page it is
// page.Locator so queries start at the document.
type element struct {
	loc    playwright.Locator
	locate func(selector string) playwright.Locator
}

func newElement(loc playwright.Locator) *element {
	return &element{
		loc: loc,
		locate: func(selector string) playwright.Locator {
			return loc.Locator(selector)
		},
	}
}

func (e *element) Query(selector string) (dom.Element, error) {
	matches := e.locate(selector)
	n, err := matches.Count()
	if err != nil {
		return nil, translate(fmt.Errorf("query %q: %w", selector, err))
	}
	if n == 0 {
		return nil, fmt.Errorf("query %q: %w", selector, dom.ErrNotFound)
	}
	return newElement(matches.First()), nil
}

func (e *element) QueryAll(selector string) ([]dom.Element, error) {
	all, err := e.locate(selector).All()
	if err != nil {
		return nil, translate(fmt.Errorf("query all %q: %w", selector, err))
	}
	out := make([]dom.Element, len(all))
	for i, l := range all {
		out[i] = newElement(l)
	}
	return out, nil
}

func (e *element) Attr(name string) (string, error) {
	v, err := e.loc.GetAttribute(name)
	if err != nil {
		return "", translate(err)
	}
	return v, nil
}

func (e *element) Text() (string, error) {
	t, err := e.loc.InnerText()
	if err != nil {
		return "", translate(err)
	}
	return t, nil
}

func (e *element) Click(timeout time.Duration) error {
	return translate(e.loc.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)}))
}

func (e *element) ScrollIntoView() error {
	return translate(e.loc.ScrollIntoViewIfNeeded())
}

func (e *element) Fill(value string) error {
	return translate(e.loc.Fill(value))
}

func (e *element) WaitFor(selector string, timeout time.Duration) error {
	err := e.locate(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: ms(timeout),
	})
	if err != nil {
		return translate(fmt.Errorf("wait for %q: %w", selector, err))
	}
	return nil
}

type page struct {
	*element
	p playwright.Page
}

func newPage(p playwright.Page) *page {
	return &page{
		element: &element{
			loc:    p.Locator(":root"),
			locate: func(selector string) playwright.Locator {
				return p.Locator(selector)
			},
		},
		p:       p,
	}
}

func (pg *page) Goto(url string, timeout time.Duration) error {
	_, err := pg.p.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(timeout),
	})
	if err != nil {
		return translate(fmt.Errorf("goto %s: %w", url, err))
	}
	return nil
}

func (pg *page) WaitVisible(selector string, timeout time.Duration) error {
	return pg.waitState(selector, playwright.WaitForSelectorStateVisible, timeout)
}

func (pg *page) WaitHidden(selector string, timeout time.Duration) error {
	return pg.waitState(selector, playwright.WaitForSelectorStateHidden, timeout)
}

func (pg *page) waitState(selector string, state *playwright.WaitForSelectorState, timeout time.Duration) error {
	err := pg.p.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: ms(timeout),
	})
	if err != nil {
		return translate(fmt.Errorf("wait %s %q: %w", *state, selector, err))
	}
	return nil
}

func (pg *page) WaitNetworkIdle(timeout time.Duration) error {
	return translate(pg.p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	}))
}

const textChangedJS = `([sel, prev]) => {
	const el = document.querySelector(sel);
	if (!el) return false;
	const t = el.innerText.trim();
	return t !== '' && t !== prev;
}`

func (pg *page) WaitTextChange(selector, previous string, timeout time.Duration) error {
	_, err := pg.p.WaitForFunction(textChangedJS, []string{selector, previous}, playwright.PageWaitForFunctionOptions{
		Timeout: ms(timeout),
	})
	if err != nil {
		return translate(fmt.Errorf("wait text change %q: %w", selector, err))
	}
	return nil
}

const removeJS = `(sel) => {
	const el = document.querySelector(sel);
	if (el) el.remove();
}`

func (pg *page) Remove(selector string) error {
	if _, err := pg.p.Evaluate(removeJS, selector); err != nil {
		return fmt.Errorf("remove %q: %w", selector, err)
	}
	return nil
}

func (pg *page) URL() string {
	return pg.p.URL()
}

func (pg *page) Screenshot(path string) error {
	_, err := pg.p.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (pg *page) Close() error {
	return pg.p.Close()
}

// translate tags Playwright timeouts with dom.ErrTimeout.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) && !errors.Is(err, dom.ErrTimeout) {
		return fmt.Errorf("%w: %w", dom.ErrTimeout, err)
	}
	return err
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

var (
	_ dom.Browser = (*PlaywrightManager)(nil)
	_ dom.Session = (*session)(nil)
	_ dom.Page    = (*page)(nil)
)
