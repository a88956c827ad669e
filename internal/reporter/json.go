package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go-jss-crawler/internal/scraper"
)

// JSON collects listings and writes them as one indented array on Close.
type JSON struct {
	mu       sync.Mutex
	open     func() (io.WriteCloser, error)
	listings []scraper.Listing
}

// NewJSONFile writes to dir/recruit-<day>.json, creating dir as needed.
func NewJSONFile(dir, day string) *JSON {
	path := filepath.Join(dir, fmt.Sprintf("recruit-%s.json", day))
	return &JSON{open: func() (io.WriteCloser, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		return os.Create(path)
	}}
}

// NewJSONWriter writes to w, which is left open.
func NewJSONWriter(w io.Writer) *JSON {
	return &JSON{open: func() (io.WriteCloser, error) {
		return nopCloser{w}, nil
	}}
}

func (j *JSON) Emit(_ context.Context, l scraper.Listing) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.listings = append(j.listings, l)
	return nil
}

func (j *JSON) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	out, err := j.open()
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}

	listings := j.listings
	if listings == nil {
		listings = []scraper.Listing{}
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		out.Close()
		return fmt.Errorf("write results: %w", err)
	}
	return out.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
