// Package domtest provides an in-memory dom implementation for tests.
//
// Selectors are matched literally: an element answers Query(sel) only with the
// children registered under exactly sel. Tests build pages with the same
// selector strings the code under test uses.
package domtest

import (
	"fmt"
	"time"

	"go-jss-crawler/internal/dom"
)

// Element is a fake node.
type Element struct {
	Label    string
	Attrs    map[string]string
	children map[string][]*Element

	// OnClick runs on every click; a non-nil return is the click's error.
	OnClick   func() error
	Clicks    int
	Scrolls   int
	Filled    string
	QueryErrs map[string]error
	TextErr   error
	ScrollErr error
}

// New returns an element whose inner text is text.
func New(text string) *Element {
	return &Element{
		Label:    text,
		Attrs:    map[string]string{},
		children: map[string][]*Element{},
	}
}

// WithAttr sets an attribute and returns e.
func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

// Add appends children under selector and returns e.
func (e *Element) Add(selector string, kids ...*Element) *Element {
	e.children[selector] = append(e.children[selector], kids...)
	return e
}

// Drop removes every child registered under selector.
func (e *Element) Drop(selector string) {
	delete(e.children, selector)
}

// Has reports whether selector currently matches.
func (e *Element) Has(selector string) bool {
	return len(e.children[selector]) > 0
}

func (e *Element) Query(selector string) (dom.Element, error) {
	if err := e.QueryErrs[selector]; err != nil {
		return nil, err
	}
	kids := e.children[selector]
	if len(kids) == 0 {
		return nil, dom.ErrNotFound
	}
	return kids[0], nil
}

func (e *Element) QueryAll(selector string) ([]dom.Element, error) {
	if err := e.QueryErrs[selector]; err != nil {
		return nil, err
	}
	kids := e.children[selector]
	out := make([]dom.Element, len(kids))
	for i, k := range kids {
		out[i] = k
	}
	return out, nil
}

func (e *Element) Attr(name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *Element) Text() (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	return e.Label, nil
}

func (e *Element) Click(time.Duration) error {
	e.Clicks++
	if e.OnClick != nil {
		return e.OnClick()
	}
	return nil
}

func (e *Element) ScrollIntoView() error {
	e.Scrolls++
	return e.ScrollErr
}

func (e *Element) Fill(value string) error {
	e.Filled = value
	return nil
}

func (e *Element) WaitFor(selector string, _ time.Duration) error {
	if e.Has(selector) {
		return nil
	}
	return fmt.Errorf("wait for %q: %w", selector, dom.ErrTimeout)
}

// Site maps URLs to page builders. A builder runs on every navigation so each
// page gets its own tree.
type Site struct {
	Pages    map[string]func() *Element
	GotoErrs map[string]error
	Visits   []string
}

// NewSite returns an empty site.
func NewSite() *Site {
	return &Site{
		Pages:    map[string]func() *Element{},
		GotoErrs: map[string]error{},
	}
}

// Handle registers a builder for url.
func (s *Site) Handle(url string, build func() *Element) {
	s.Pages[url] = build
}

// Page is a fake tab.
type Page struct {
	*Element

	site        *Site
	url         string
	Closed      bool
	Removed     []string
	Screenshots []string
}

// NewPage returns a blank page bound to site.
func NewPage(site *Site) *Page {
	return &Page{Element: New(""), site: site}
}

func (p *Page) Goto(url string, _ time.Duration) error {
	p.site.Visits = append(p.site.Visits, url)
	if err := p.site.GotoErrs[url]; err != nil {
		return err
	}
	build, ok := p.site.Pages[url]
	if !ok {
		return fmt.Errorf("goto %s: 404", url)
	}
	p.Element = build()
	p.url = url
	return nil
}

func (p *Page) WaitVisible(selector string, timeout time.Duration) error {
	return p.WaitFor(selector, timeout)
}

func (p *Page) WaitHidden(selector string, _ time.Duration) error {
	if !p.Has(selector) {
		return nil
	}
	return fmt.Errorf("wait hidden %q: %w", selector, dom.ErrTimeout)
}

func (p *Page) WaitNetworkIdle(time.Duration) error {
	return nil
}

func (p *Page) WaitTextChange(selector, previous string, _ time.Duration) error {
	el, err := p.Query(selector)
	if err != nil {
		return fmt.Errorf("wait text change %q: %w", selector, dom.ErrTimeout)
	}
	text, _ := el.Text()
	if text == "" || text == previous {
		return fmt.Errorf("wait text change %q: %w", selector, dom.ErrTimeout)
	}
	return nil
}

func (p *Page) Remove(selector string) error {
	p.Removed = append(p.Removed, selector)
	p.Drop(selector)
	return nil
}

// SetURL overrides the current URL, e.g. to mimic a redirect.
func (p *Page) SetURL(url string) {
	p.url = url
}

func (p *Page) URL() string {
	return p.url
}

func (p *Page) Screenshot(path string) error {
	p.Screenshots = append(p.Screenshots, path)
	return nil
}

func (p *Page) Close() error {
	p.Closed = true
	return nil
}

// Session is a fake browsing context.
type Session struct {
	Site      *Site
	StatePath string
	Pages     []*Page
	Saved     []string
	SaveErr   error
	PageErr   error
	Closed    bool

	// OnNewPage customizes each page right after creation.
	OnNewPage func(*Page)
	// OnSave runs after a successful SaveState, e.g. to write a state file.
	OnSave func(path string) error
}

func (s *Session) NewPage() (dom.Page, error) {
	if s.PageErr != nil {
		return nil, s.PageErr
	}
	p := NewPage(s.Site)
	if s.OnNewPage != nil {
		s.OnNewPage(p)
	}
	s.Pages = append(s.Pages, p)
	return p, nil
}

func (s *Session) SaveState(path string) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = append(s.Saved, path)
	if s.OnSave != nil {
		return s.OnSave(path)
	}
	return nil
}

func (s *Session) Close() error {
	s.Closed = true
	return nil
}

// OpenPages counts pages not yet closed.
func (s *Session) OpenPages() int {
	n := 0
	for _, p := range s.Pages {
		if !p.Closed {
			n++
		}
	}
	return n
}

// Browser is a fake browser; every session shares Site.
type Browser struct {
	Site     *Site
	Sessions []*Session
	Err      error
	Closed   bool

	// OnNewSession customizes each session right after creation.
	OnNewSession func(*Session)
}

// NewBrowser returns a browser serving site.
func NewBrowser(site *Site) *Browser {
	return &Browser{Site: site}
}

func (b *Browser) NewSession(statePath string) (dom.Session, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	s := &Session{Site: b.Site, StatePath: statePath}
	if b.OnNewSession != nil {
		b.OnNewSession(s)
	}
	b.Sessions = append(b.Sessions, s)
	return s, nil
}

func (b *Browser) Close() error {
	b.Closed = true
	return nil
}

var (
	_ dom.Page    = (*Page)(nil)
	_ dom.Session = (*Session)(nil)
	_ dom.Browser = (*Browser)(nil)
)
