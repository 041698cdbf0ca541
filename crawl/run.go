// Package crawl orchestrates the content acquisition pipeline: link
// discovery, concurrent fetch+extract across a bounded worker pool, and
// the primary-to-fallback escalation policy.
package crawl

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"kbharvest"
)

// Runner coordinates one pipeline run. All collaborator fields except
// Fetcher and Extractor are optional.
type Runner struct {
	// Fetcher is the primary fetcher. Fallback, when set, is attempted
	// exactly once per URL after a failed primary attempt.
	Fetcher  kbharvest.Fetcher
	Fallback kbharvest.Fetcher

	// Discoverers maps a source's discovery strategy to its
	// implementation. The empty key is the selector-driven default.
	Discoverers map[string]kbharvest.Discoverer

	// Extractor applies the source's selector rules. Heuristic, when
	// set, is tried after a selector miss.
	Extractor kbharvest.Extractor
	Heuristic kbharvest.Extractor

	// Limiter spaces out requests per host across all workers.
	Limiter kbharvest.HostLimiter

	// Reporter receives one event per fetch attempt.
	Reporter kbharvest.FetchReporter

	// FallbackAuthors maps host to author for pages without a byline.
	FallbackAuthors map[string]string

	// Concurrency bounds the number of in-flight fetch+extract tasks.
	Concurrency int

	// ForceFallback bypasses the primary fetcher entirely.
	ForceFallback bool
}

// Skip records a URL excluded from output and why.
type Skip struct {
	URL    string
	Reason string
}

// SourceResult is the outcome of running one source.
type SourceResult struct {
	Source  string
	Items   []kbharvest.KnowledgeItem
	Skipped []Skip
}

// Discover returns the candidate article URLs for a source without
// issuing any article fetches. Used directly for dry runs.
func (r *Runner) Discover(ctx context.Context, src *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
	disc, ok := r.Discoverers[src.Discovery]
	if !ok {
		return nil, kbharvest.Errorf(kbharvest.ECONFIG, "source %q: unknown discovery strategy %q", src.Name, src.Discovery)
	}
	return disc.Discover(ctx, src)
}

// RunSource executes the full pipeline for one source: validation,
// discovery, then concurrent fetch+extract. Failures are local: a
// disabled or invalid source yields an empty result, a discovery miss
// yields zero items with the diagnostic recorded, and per-URL failures
// become Skip entries.
func (r *Runner) RunSource(ctx context.Context, src *kbharvest.Source) (*SourceResult, error) {
	result := &SourceResult{Source: src.Name}

	if !src.Enabled {
		return result, nil
	}
	if err := src.Validate(); err != nil {
		return result, err
	}

	links, err := r.Discover(ctx, src)
	if err != nil {
		if kbharvest.ErrorCode(err) == kbharvest.ESELECTORMISS {
			result.Skipped = append(result.Skipped, Skip{URL: src.URL, Reason: kbharvest.ESELECTORMISS})
			return result, nil
		}
		return result, err
	}

	urls := make([]string, len(links))
	for i, link := range links {
		urls[i] = link.URL
	}

	result.Items, result.Skipped = r.Acquire(ctx, src, urls)
	return result, nil
}

// acquireResult holds the outcome of processing a single URL.
type acquireResult struct {
	position int
	url      string
	item     *kbharvest.KnowledgeItem
	skip     string
}

// Acquire fetches and extracts the given URLs concurrently. No more
// than Concurrency tasks are in flight at once; per-host spacing is
// enforced by the Limiter independent of worker count. Results are
// restored to discovery order regardless of completion order.
func (r *Runner) Acquire(ctx context.Context, src *kbharvest.Source, urls []string) ([]kbharvest.KnowledgeItem, []Skip) {
	if len(urls) == 0 {
		return nil, nil
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = kbharvest.DefaultMaxWorkers
	}

	resultCh := make(chan acquireResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			i, u := i, u
			g.Go(func() error {
				resultCh <- r.processURL(gctx, src, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Restore discovery order after all tasks complete.
	results := make([]acquireResult, len(urls))
	for res := range resultCh {
		results[res.position] = res
	}

	var items []kbharvest.KnowledgeItem
	var skipped []Skip
	for _, res := range results {
		if res.item != nil {
			items = append(items, *res.item)
			continue
		}
		skipped = append(skipped, Skip{URL: res.url, Reason: res.skip})
	}
	return items, skipped
}

// processURL runs the fetch escalation and extraction for one URL.
func (r *Runner) processURL(ctx context.Context, src *kbharvest.Source, position int, articleURL string) acquireResult {
	result := acquireResult{position: position, url: articleURL}

	if r.Limiter != nil {
		if u, err := url.Parse(articleURL); err == nil {
			if err := r.Limiter.Wait(ctx, u.Host); err != nil {
				result.skip = kbharvest.EUNAVAILABLE
				return result
			}
		}
	}

	fetched := r.fetch(ctx, articleURL)
	if !fetched.OK() {
		result.skip = string(fetched.Status)
		return result
	}

	extracted, err := r.extract(fetched.HTML, src)
	if err != nil {
		result.skip = kbharvest.ErrorCode(err)
		return result
	}
	extracted.SourceURL = articleURL

	if err := kbharvest.Normalize(extracted, src, r.FallbackAuthors); err != nil {
		result.skip = kbharvest.ErrorCode(err)
		return result
	}

	item := extracted.Item()
	result.item = &item
	return result
}

// fetch applies the escalation policy: at most one primary attempt and
// at most one fallback attempt per URL, never more. Every attempt is
// reported exactly once.
func (r *Runner) fetch(ctx context.Context, articleURL string) *kbharvest.FetchResult {
	if r.ForceFallback && r.Fallback != nil {
		return r.attempt(ctx, r.Fallback, articleURL)
	}

	primary := r.attempt(ctx, r.Fetcher, articleURL)
	if primary.OK() || r.Fallback == nil {
		return primary
	}

	return r.attempt(ctx, r.Fallback, articleURL)
}

func (r *Runner) attempt(ctx context.Context, fetcher kbharvest.Fetcher, articleURL string) *kbharvest.FetchResult {
	res, err := fetcher.Fetch(ctx, articleURL)
	if err != nil || res == nil {
		res = &kbharvest.FetchResult{URL: articleURL, Status: kbharvest.FetchError}
	}
	if r.Reporter != nil {
		r.Reporter.ReportFetch(kbharvest.FetchAttempt{
			URL:     articleURL,
			Method:  res.Method,
			Status:  res.Status,
			Elapsed: res.Elapsed,
			Err:     err,
		})
	}
	return res
}

// extract applies the selector rules, then the heuristic extractor on a
// selector miss.
func (r *Runner) extract(html string, src *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
	extracted, err := r.Extractor.Extract(html, src)
	if err == nil {
		return extracted, nil
	}
	if kbharvest.ErrorCode(err) != kbharvest.ESELECTORMISS || r.Heuristic == nil {
		return nil, err
	}
	return r.Heuristic.Extract(html, src)
}
