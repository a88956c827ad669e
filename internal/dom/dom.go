// Package dom is the narrow view of a browser page the crawler works against.
// The Playwright adapter lives in internal/browser, an in-memory fake in domtest.
package dom

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Query when no node matches the selector.
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is wrapped by every bounded wait that gave up.
	ErrTimeout = errors.New("timed out")
)

// Element is one node (or the document root) that can be queried and driven.
type Element interface {
	// Query returns the first match below the element, or ErrNotFound.
	Query(selector string) (Element, error)
	// QueryAll returns every match in document order. No match is not an error.
	QueryAll(selector string) ([]Element, error)
	// Attr returns the attribute value, "" when it is absent.
	Attr(name string) (string, error)
	// Text returns the rendered inner text.
	Text() (string, error)
	Click(timeout time.Duration) error
	ScrollIntoView() error
	Fill(value string) error
	// WaitFor blocks until selector is attached below the element.
	WaitFor(selector string, timeout time.Duration) error
}

// Page is a tab. As an Element it is rooted at the document.
type Page interface {
	Element

	Goto(url string, timeout time.Duration) error
	WaitVisible(selector string, timeout time.Duration) error
	WaitHidden(selector string, timeout time.Duration) error
	WaitNetworkIdle(timeout time.Duration) error
	// WaitTextChange blocks until the text of selector is non-empty and differs from previous.
	WaitTextChange(selector, previous string, timeout time.Duration) error
	// Remove force-deletes the first node matching selector. Missing nodes are ignored.
	Remove(selector string) error
	URL() string
	Screenshot(path string) error
	Close() error
}

// Session is an authenticated browsing context shared by the pages of one crawl.
type Session interface {
	NewPage() (Page, error)
	// SaveState serializes cookies and local storage to path.
	SaveState(path string) error
	Close() error
}

// Browser hands out sessions. An empty statePath yields a fresh, anonymous session.
type Browser interface {
	NewSession(statePath string) (Session, error)
	Close() error
}

// IsNotFound reports whether err means "nothing matched".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
