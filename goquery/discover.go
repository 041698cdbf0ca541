// Package goquery implements selector-driven link discovery and content
// extraction on top of CSS selector evaluation.
package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kbharvest"
)

// Ensure Discoverer implements kbharvest.Discoverer at compile time.
var _ kbharvest.Discoverer = (*Discoverer)(nil)

// Discoverer finds article URLs on a source's listing pages by applying
// the source's link selector rules.
type Discoverer struct {
	Fetcher kbharvest.Fetcher
}

// NewDiscoverer creates a Discoverer using the given fetcher for listing
// pages.
func NewDiscoverer(fetcher kbharvest.Fetcher) *Discoverer {
	return &Discoverer{Fetcher: fetcher}
}

// Discover fetches the source's listing pages, extracts article links
// using the first selector candidate that matches, and follows
// pagination up to the source's page ceiling. Links are deduplicated by
// normalized URL and ordered by first occurrence.
//
// A listing page where no candidate matches contributes zero links; if
// that holds for every page, Discover returns ESELECTORMISS so the
// caller can surface the diagnostic while the source degrades to zero
// items.
func (d *Discoverer) Discover(ctx context.Context, src *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
	candidates := src.LinkCandidates()
	if len(candidates) == 0 {
		return nil, kbharvest.Errorf(kbharvest.ECONFIG, "source %q: no link selectors", src.Name)
	}

	listings := src.DiscoveryPages
	if len(listings) == 0 {
		listings = []string{src.URL}
	}

	seen := make(map[string]bool)
	var links []kbharvest.DiscoveredLink
	pagesWithContent := 0

	for _, listing := range listings {
		pageURL := listing
		visited := make(map[string]bool)

		// Each listing page may paginate; MaxPages bounds the chain so a
		// pathological "next" loop cannot run forever.
		for page := 0; pageURL != "" && !visited[pageURL] && page < src.MaxPages; page++ {
			visited[pageURL] = true

			res, err := d.Fetcher.Fetch(ctx, pageURL)
			if err != nil {
				return nil, err
			}
			if !res.OK() {
				break
			}
			pagesWithContent++

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
			if err != nil {
				return nil, kbharvest.Errorf(kbharvest.EINVALID, "parse listing %q: %v", pageURL, err)
			}

			base, err := url.Parse(pageURL)
			if err != nil {
				break
			}

			for _, link := range extractLinks(doc, base, candidates, src) {
				norm := kbharvest.NormalizeURL(link)
				if seen[norm] {
					continue
				}
				seen[norm] = true
				links = append(links, kbharvest.DiscoveredLink{URL: link, SourceName: src.Name})
			}

			pageURL = nextPage(doc, base, src.NextPageSelector)
		}
	}

	if len(links) == 0 && pagesWithContent > 0 {
		return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "source %q: link selectors matched nothing on %d page(s)", src.Name, pagesWithContent)
	}

	return links, nil
}

// extractLinks tries each selector candidate in order and returns the
// resolved hrefs from the first that yields at least one usable match.
func extractLinks(doc *goquery.Document, base *url.URL, candidates []string, src *kbharvest.Source) []string {
	for _, selector := range candidates {
		var found []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists || href == "" || isNonHTTPLink(href) {
				return
			}
			if src.LinkFilter != "" && !strings.Contains(href, src.LinkFilter) {
				return
			}
			resolved := resolveURL(base, href)
			if resolved == "" {
				return
			}
			found = append(found, resolved)
		})
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

// nextPage resolves the pagination link, or "" when there is none.
func nextPage(doc *goquery.Document, base *url.URL, selector string) string {
	if selector == "" {
		return ""
	}
	sel := doc.Find(selector).First()
	href, exists := sel.Attr("href")
	if !exists || href == "" || isNonHTTPLink(href) {
		return ""
	}
	return resolveURL(base, href)
}

// resolveURL resolves a relative URL against a base URL. Returns empty
// string if the href cannot be parsed or if the resolved URL is
// self-referential after stripping the fragment.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
