// Package slog provides logging decorators for the domain interfaces.
package slog

import (
	"context"
	"log/slog"

	"kbharvest"
)

// Ensure Fetcher implements kbharvest.Fetcher at compile time.
var _ kbharvest.Fetcher = (*Fetcher)(nil)

// Fetcher wraps a kbharvest.Fetcher with debug logging.
type Fetcher struct {
	next   kbharvest.Fetcher
	logger *slog.Logger
}

// NewFetcher creates a logging decorator around next.
func NewFetcher(next kbharvest.Fetcher, logger *slog.Logger) *Fetcher {
	return &Fetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the classified outcome.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*kbharvest.FetchResult, error) {
	res, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Error("fetch failed",
			"url", url,
			"error", kbharvest.ErrorMessage(err),
		)
		return res, err
	}
	f.logger.Debug("fetch",
		"url", url,
		"status", string(res.Status),
		"method", string(res.Method),
		"elapsed", res.Elapsed,
		"bytes", len(res.HTML),
	)
	return res, nil
}
