// Package gofeed provides feed-based link discovery for newsletter and
// syndicated sources whose listing pages are rendered client-side but
// whose RSS/Atom feeds are not.
package gofeed

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"

	"kbharvest"
)

// Ensure Discoverer implements kbharvest.Discoverer at compile time.
var _ kbharvest.Discoverer = (*Discoverer)(nil)

// Discoverer finds article URLs by parsing the source's feed. The
// source URL is treated as the feed URL.
type Discoverer struct {
	Fetcher kbharvest.Fetcher
	parser  *gofeed.Parser
}

// NewDiscoverer creates a Discoverer using the given fetcher for the
// feed document.
func NewDiscoverer(fetcher kbharvest.Fetcher) *Discoverer {
	return &Discoverer{
		Fetcher: fetcher,
		parser:  gofeed.NewParser(),
	}
}

// Discover fetches and parses the source's feed and returns its item
// links in feed order, filtered by the source's link filter and
// deduplicated by normalized URL.
func (d *Discoverer) Discover(ctx context.Context, src *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
	res, err := d.Fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, kbharvest.Errorf(kbharvest.EUNAVAILABLE, "source %q: feed fetch %s", src.Name, res.Status)
	}

	feed, err := d.parser.ParseString(res.HTML)
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.EINVALID, "source %q: parsing feed: %v", src.Name, err)
	}

	seen := make(map[string]bool)
	var links []kbharvest.DiscoveredLink
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		if src.LinkFilter != "" && !strings.Contains(link, src.LinkFilter) {
			continue
		}
		norm := kbharvest.NormalizeURL(link)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		links = append(links, kbharvest.DiscoveredLink{URL: link, SourceName: src.Name})
	}

	return links, nil
}
