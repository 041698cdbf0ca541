// Package mock provides function-field mocks of the domain interfaces.
package mock

import (
	"context"

	"kbharvest"
)

var _ kbharvest.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of kbharvest.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*kbharvest.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*kbharvest.FetchResult, error) {
	return f.FetchFn(ctx, url)
}
