// Define the records a crawl emits and the interface every crawler implements
// Ensure consistency between crawlers and sinks

package scraper

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go-jss-crawler/internal/dedup"
)

// Listing is one posting on one calendar day, enriched from its detail page.
type Listing struct {
	ExternalID   *string `json:"employment_id"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Link         string  `json:"link"`
	ApplyLink    *string `json:"recruitment_link"`
	CompanyName  string  `json:"company_name"`
	PostingTitle string  `json:"recruitment_title"`
	Jobs         []Job   `json:"jobs"`
}

type Job struct {
	PostingType    *string         `json:"recruitment_type"`
	Title          *string         `json:"recruitment_title"`
	EssayQuestions []EssayQuestion `json:"essay_questions"`
}

// EssayQuestion keeps the limit as shown on the page, e.g. "(700자)".
type EssayQuestion struct {
	Question string  `json:"question"`
	Limit    *string `json:"limit"`
}

// NewListing returns a basic listing as read from the calendar, before enrichment.
func NewListing(company, title, link, startDate, externalID string) Listing {
	l := Listing{
		StartDate:    startDate,
		Link:         link,
		CompanyName:  strings.TrimSpace(company),
		PostingTitle: strings.TrimSpace(title),
		Jobs:         []Job{},
	}
	if id := strings.TrimSpace(externalID); id != "" {
		l.ExternalID = &id
	}
	if l.PostingTitle == "" {
		l.PostingTitle = DefaultPostingTitle(l.CompanyName)
	}
	return l
}

// DefaultPostingTitle is used when the calendar shows no title of its own.
func DefaultPostingTitle(company string) string {
	return company + " 채용 공고"
}

// DedupKey identifies the posting within one crawl.
func (l Listing) DedupKey() string {
	return dedup.Key(l.CompanyName, Deref(l.ExternalID))
}

func (l Listing) String() string {
	return fmt.Sprintf("%s [%s] %s", l.CompanyName, Deref(l.ExternalID), l.Link)
}

// Deref returns "" for a nil pointer.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to a trimmed copy of s, or nil when s is blank.
func Ptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Mode selects which label of a calendar entry counts as "on this day".
type Mode string

const (
	ModeStart Mode = "start"
	ModeEnd   Mode = "end"
)

// Label is the badge the calendar prints on an entry for this mode.
func (m Mode) Label() string {
	if m == ModeEnd {
		return "끝"
	}
	return "시"
}

// ParseMode accepts "start"/"end" (and the Korean badges). Empty means start.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "start", "시":
		return ModeStart, nil
	case "end", "끝":
		return ModeEnd, nil
	}
	return "", fmt.Errorf("unknown mode %q, want start or end", s)
}

// Request is one crawl invocation's input.
type Request struct {
	Date      string
	Companies []string
	Mode      Mode
}

// Crawler defines the interface a calendar crawler must implement
type Crawler interface {
	// Crawl streams enriched, deduplicated listings. The sequence is single-use;
	// a non-nil error is fatal and ends it.
	Crawl(ctx context.Context, req Request) iter.Seq2[Listing, error]

	// Name is the site name
	Name() string
}
