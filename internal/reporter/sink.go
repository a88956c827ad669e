// Package reporter fans crawled listings out to wherever they are kept:
// the database, Telegram and a JSON results file.
package reporter

import (
	"context"
	"errors"

	"go-jss-crawler/internal/scraper"
)

// Sink receives listings one at a time as the crawl yields them.
type Sink interface {
	Emit(ctx context.Context, l scraper.Listing) error
	Close() error
}

// SinkFunc adapts a function into a Sink with a no-op Close.
type SinkFunc func(ctx context.Context, l scraper.Listing) error

func (f SinkFunc) Emit(ctx context.Context, l scraper.Listing) error {
	return f(ctx, l)
}

func (f SinkFunc) Close() error {
	return nil
}

// Multi emits to every sink; one failing sink does not stop the others.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, l scraper.Listing) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
