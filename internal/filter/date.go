package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the calendar's day attribute format.
const DayLayout = "20060102"

var (
	ErrInvalidDay   = errors.New("invalid day, want YYYYMMDD")
	ErrInvalidMonth = errors.New("unrecognized month label")

	monthLabelRegex = regexp.MustCompile(`(\d{4})\D{1,3}(\d{1,2})`)
	endDateRegex    = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
	limitRegex      = regexp.MustCompile(`\d[\d,]*`)
)

// ParseDay parses a YYYYMMDD string.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return t, nil
}

// FormatDay formats t as YYYYMMDD.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// PreviousDay returns the YYYYMMDD string of the day before day.
func PreviousDay(day string) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, -1)), nil
}

// Month is a calendar month, comparable with the usual operators via Index.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month day falls in.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Index orders months: a later month has a larger index.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

func (m Month) After(o Month) bool {
	return m.Index() > o.Index()
}

func (m Month) String() string {
	return fmt.Sprintf("%04d.%02d", m.Year, int(m.Month))
}

// ParseMonthLabel reads the calendar header, e.g. "2025.01", "2025. 1" or "2025년 1월".
func ParseMonthLabel(label string) (Month, error) {
	match := monthLabelRegex.FindStringSubmatch(label)
	if match == nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, label)
	}
	year, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, label)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// LooksLikeEndDate reports whether a detail-page deadline such as
// "2025년 1월 10일 14:59" carries at least year, month and day.
func LooksLikeEndDate(s string) bool {
	_, err := ParseEndDate(s)
	return err == nil
}

// ParseEndDate extracts the date part of a Korean deadline string.
func ParseEndDate(s string) (time.Time, error) {
	match := endDateRegex.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return time.Time{}, fmt.Errorf("unrecognized end date %q", s)
	}
	year, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	day, _ := strconv.Atoi(match[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	//time.Date normalizes 2월 30일 into March; reject instead
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("impossible end date %q", s)
	}
	return t, nil
}

// ParseLimit reads a character limit such as "(700자)" or "1,000자 이내".
func ParseLimit(s string) (int, error) {
	match := limitRegex.FindString(s)
	if match == "" {
		return 0, fmt.Errorf("no number in limit %q", s)
	}
	return strconv.Atoi(strings.ReplaceAll(match, ",", ""))
}
