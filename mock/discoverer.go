package mock

import (
	"context"

	"kbharvest"
)

var _ kbharvest.Discoverer = (*Discoverer)(nil)

// Discoverer is a mock implementation of kbharvest.Discoverer.
type Discoverer struct {
	DiscoverFn func(ctx context.Context, src *kbharvest.Source) ([]kbharvest.DiscoveredLink, error)
}

func (d *Discoverer) Discover(ctx context.Context, src *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
	return d.DiscoverFn(ctx, src)
}
