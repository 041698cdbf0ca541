package kbharvest

import (
	"context"
	"net/url"
	"strings"
)

// DiscoveredLink is a candidate article URL found on a source's listing
// page, sitemap, or feed.
type DiscoveredLink struct {
	URL        string
	SourceName string
}

// Discoverer finds candidate article URLs for a source. The returned
// links are deduplicated by normalized URL and ordered by first
// occurrence. A selector rule that matches nothing on a non-empty page
// yields an ESELECTORMISS error; the source degrades to zero items but
// the run continues.
type Discoverer interface {
	Discover(ctx context.Context, src *Source) ([]DiscoveredLink, error)
}

// NormalizeURL reduces a URL to scheme+host+path for deduplication:
// query and fragment are dropped, the trailing slash is trimmed, and
// scheme and host are lowercased. Unparseable input is returned as-is.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}
