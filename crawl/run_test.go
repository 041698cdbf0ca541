package crawl_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"kbharvest"
	"kbharvest/crawl"
	"kbharvest/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okFetcher(method kbharvest.FetchMethod) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
			return &kbharvest.FetchResult{URL: url, Status: kbharvest.FetchOK, HTML: "<html>page</html>", Method: method}, nil
		},
	}
}

func statusFetcher(method kbharvest.FetchMethod, status kbharvest.FetchStatus) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
			res := &kbharvest.FetchResult{URL: url, Status: status, Method: method}
			if status == kbharvest.FetchOK {
				res.HTML = "<html>page</html>"
			}
			return res, nil
		},
	}
}

// itemExtractor returns a long-enough item titled after its URL.
func itemExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(_ string, _ *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
			return &kbharvest.ExtractedItem{
				Title:   "Extracted",
				Content: strings.Repeat("content ", 20),
			}, nil
		},
	}
}

func runnerSource() *kbharvest.Source {
	return &kbharvest.Source{
		Name:    "blog",
		URL:     "https://example.com/blog",
		Type:    kbharvest.TypeBlog,
		Enabled: true,
		RuleSet: kbharvest.RuleSet{
			LinkSelector:     "a.post",
			ContentMinLength: 50,
		},
	}
}

func TestRunSource(t *testing.T) {
	t.Parallel()

	t.Run("disabled source issues no fetch and yields no items", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int64
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
				fetches.Add(1)
				return &kbharvest.FetchResult{URL: url, Status: kbharvest.FetchOK, HTML: "x"}, nil
			},
		}
		src := runnerSource()
		src.Enabled = false

		r := &crawl.Runner{
			Fetcher:   fetcher,
			Extractor: itemExtractor(),
			Discoverers: map[string]kbharvest.Discoverer{
				"": &mock.Discoverer{DiscoverFn: func(_ context.Context, s *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
					return []kbharvest.DiscoveredLink{{URL: "https://example.com/blog/a", SourceName: s.Name}}, nil
				}},
			},
		}

		result, err := r.RunSource(context.Background(), src)

		require.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Zero(t, fetches.Load())
	})

	t.Run("invalid source aborts that source only", func(t *testing.T) {
		t.Parallel()

		src := runnerSource()
		src.URL = ""

		r := &crawl.Runner{Fetcher: okFetcher(kbharvest.MethodPrimary), Extractor: itemExtractor()}
		result, err := r.RunSource(context.Background(), src)

		assert.Equal(t, kbharvest.ECONFIG, kbharvest.ErrorCode(err))
		assert.Empty(t, result.Items)
	})

	t.Run("discovery selector miss degrades to zero items", func(t *testing.T) {
		t.Parallel()

		r := &crawl.Runner{
			Fetcher:   okFetcher(kbharvest.MethodPrimary),
			Extractor: itemExtractor(),
			Discoverers: map[string]kbharvest.Discoverer{
				"": &mock.Discoverer{DiscoverFn: func(_ context.Context, s *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
					return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "nothing matched")
				}},
			},
		}

		result, err := r.RunSource(context.Background(), runnerSource())

		require.NoError(t, err)
		assert.Empty(t, result.Items)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, kbharvest.ESELECTORMISS, result.Skipped[0].Reason)
	})

	t.Run("items preserve discovery order", func(t *testing.T) {
		t.Parallel()

		links := []kbharvest.DiscoveredLink{
			{URL: "https://example.com/blog/a"},
			{URL: "https://example.com/blog/b"},
			{URL: "https://example.com/blog/c"},
		}
		extractor := &mock.Extractor{
			ExtractFn: func(html string, _ *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
				return &kbharvest.ExtractedItem{Title: html, Content: strings.Repeat("x", 60)}, nil
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
				// Title the page after its URL so order is observable.
				return &kbharvest.FetchResult{URL: url, Status: kbharvest.FetchOK, HTML: url, Method: kbharvest.MethodPrimary}, nil
			},
		}

		r := &crawl.Runner{
			Fetcher:     fetcher,
			Extractor:   extractor,
			Concurrency: 3,
			Discoverers: map[string]kbharvest.Discoverer{
				"": &mock.Discoverer{DiscoverFn: func(_ context.Context, _ *kbharvest.Source) ([]kbharvest.DiscoveredLink, error) {
					return links, nil
				}},
			},
		}

		result, err := r.RunSource(context.Background(), runnerSource())

		require.NoError(t, err)
		require.Len(t, result.Items, 3)
		assert.Equal(t, "https://example.com/blog/a", result.Items[0].Title)
		assert.Equal(t, "https://example.com/blog/b", result.Items[1].Title)
		assert.Equal(t, "https://example.com/blog/c", result.Items[2].Title)
	})
}

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("issues at most two attempts per url", func(t *testing.T) {
		t.Parallel()

		reporter := &mock.Reporter{}
		r := &crawl.Runner{
			Fetcher:   statusFetcher(kbharvest.MethodPrimary, kbharvest.FetchBlocked),
			Fallback:  statusFetcher(kbharvest.MethodFallback, kbharvest.FetchError),
			Extractor: itemExtractor(),
			Reporter:  reporter,
		}

		urls := []string{"https://a.com/1", "https://a.com/2"}
		items, skipped := r.Acquire(context.Background(), runnerSource(), urls)

		assert.Empty(t, items)
		assert.Len(t, skipped, 2)
		for _, u := range urls {
			assert.Len(t, reporter.AttemptsFor(u), 2, "url %s", u)
		}
	})

	t.Run("no fallback attempt after a successful primary fetch", func(t *testing.T) {
		t.Parallel()

		reporter := &mock.Reporter{}
		r := &crawl.Runner{
			Fetcher:   okFetcher(kbharvest.MethodPrimary),
			Fallback:  okFetcher(kbharvest.MethodFallback),
			Extractor: itemExtractor(),
			Reporter:  reporter,
		}

		items, _ := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		require.Len(t, items, 1)
		attempts := reporter.AttemptsFor("https://a.com/1")
		require.Len(t, attempts, 1)
		assert.Equal(t, kbharvest.MethodPrimary, attempts[0].Method)
	})

	t.Run("blocked primary escalates to fallback once", func(t *testing.T) {
		t.Parallel()

		reporter := &mock.Reporter{}
		r := &crawl.Runner{
			Fetcher:   statusFetcher(kbharvest.MethodPrimary, kbharvest.FetchBlocked),
			Fallback:  okFetcher(kbharvest.MethodFallback),
			Extractor: itemExtractor(),
			Reporter:  reporter,
		}

		items, skipped := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		require.Len(t, items, 1)
		assert.Empty(t, skipped)
		attempts := reporter.AttemptsFor("https://a.com/1")
		require.Len(t, attempts, 2)
		assert.Equal(t, kbharvest.MethodPrimary, attempts[0].Method)
		assert.Equal(t, kbharvest.MethodFallback, attempts[1].Method)
	})

	t.Run("timeout escalates like an error", func(t *testing.T) {
		t.Parallel()

		reporter := &mock.Reporter{}
		r := &crawl.Runner{
			Fetcher:   statusFetcher(kbharvest.MethodPrimary, kbharvest.FetchTimeout),
			Fallback:  okFetcher(kbharvest.MethodFallback),
			Extractor: itemExtractor(),
			Reporter:  reporter,
		}

		items, _ := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		require.Len(t, items, 1)
		assert.Len(t, reporter.AttemptsFor("https://a.com/1"), 2)
	})

	t.Run("without fallback a failed url is skipped with its status", func(t *testing.T) {
		t.Parallel()

		r := &crawl.Runner{
			Fetcher:   statusFetcher(kbharvest.MethodPrimary, kbharvest.FetchBlocked),
			Extractor: itemExtractor(),
		}

		items, skipped := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		assert.Empty(t, items)
		require.Len(t, skipped, 1)
		assert.Equal(t, string(kbharvest.FetchBlocked), skipped[0].Reason)
	})

	t.Run("force fallback bypasses the primary fetcher", func(t *testing.T) {
		t.Parallel()

		var primaryCalls atomic.Int64
		primary := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
				primaryCalls.Add(1)
				return &kbharvest.FetchResult{URL: url, Status: kbharvest.FetchOK, HTML: "x", Method: kbharvest.MethodPrimary}, nil
			},
		}
		reporter := &mock.Reporter{}
		r := &crawl.Runner{
			Fetcher:       primary,
			Fallback:      okFetcher(kbharvest.MethodFallback),
			Extractor:     itemExtractor(),
			Reporter:      reporter,
			ForceFallback: true,
		}

		items, _ := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		require.Len(t, items, 1)
		assert.Zero(t, primaryCalls.Load())
		attempts := reporter.AttemptsFor("https://a.com/1")
		require.Len(t, attempts, 1)
		assert.Equal(t, kbharvest.MethodFallback, attempts[0].Method)
	})

	t.Run("in-flight fetches never exceed the concurrency limit", func(t *testing.T) {
		t.Parallel()

		const limit = 3
		var inflight, peak atomic.Int64
		var mu sync.Mutex
		release := make(chan struct{})

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
				cur := inflight.Add(1)
				mu.Lock()
				if cur > peak.Load() {
					peak.Store(cur)
				}
				mu.Unlock()
				<-release
				inflight.Add(-1)
				return &kbharvest.FetchResult{URL: url, Status: kbharvest.FetchOK, HTML: "x", Method: kbharvest.MethodPrimary}, nil
			},
		}

		var urls []string
		for i := 0; i < 20; i++ {
			urls = append(urls, fmt.Sprintf("https://a.com/%d", i))
		}

		r := &crawl.Runner{
			Fetcher:     fetcher,
			Extractor:   itemExtractor(),
			Concurrency: limit,
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			items, _ := r.Acquire(context.Background(), runnerSource(), urls)
			assert.Len(t, items, len(urls))
		}()

		close(release)
		<-done

		assert.LessOrEqual(t, peak.Load(), int64(limit))
	})

	t.Run("selector miss falls back to heuristic extractor", func(t *testing.T) {
		t.Parallel()

		missing := &mock.Extractor{
			ExtractFn: func(_ string, s *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
				return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "no match")
			},
		}
		heuristic := &mock.Extractor{
			ExtractFn: func(_ string, _ *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
				return &kbharvest.ExtractedItem{Title: "Heuristic", Content: strings.Repeat("y", 60)}, nil
			},
		}

		r := &crawl.Runner{
			Fetcher:   okFetcher(kbharvest.MethodPrimary),
			Extractor: missing,
			Heuristic: heuristic,
		}

		items, _ := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		require.Len(t, items, 1)
		assert.Equal(t, "Heuristic", items[0].Title)
	})

	t.Run("selector miss without heuristic is skipped", func(t *testing.T) {
		t.Parallel()

		missing := &mock.Extractor{
			ExtractFn: func(_ string, _ *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
				return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "no match")
			},
		}

		r := &crawl.Runner{Fetcher: okFetcher(kbharvest.MethodPrimary), Extractor: missing}
		items, skipped := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		assert.Empty(t, items)
		require.Len(t, skipped, 1)
		assert.Equal(t, kbharvest.ESELECTORMISS, skipped[0].Reason)
	})

	t.Run("too-short content is skipped not fatal", func(t *testing.T) {
		t.Parallel()

		short := &mock.Extractor{
			ExtractFn: func(_ string, _ *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
				return &kbharvest.ExtractedItem{Title: "T", Content: "tiny"}, nil
			},
		}

		r := &crawl.Runner{Fetcher: okFetcher(kbharvest.MethodPrimary), Extractor: short}
		items, skipped := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		assert.Empty(t, items)
		require.Len(t, skipped, 1)
		assert.Equal(t, kbharvest.ETOOSHORT, skipped[0].Reason)
	})

	t.Run("fallback author applied by host", func(t *testing.T) {
		t.Parallel()

		r := &crawl.Runner{
			Fetcher:         okFetcher(kbharvest.MethodPrimary),
			Extractor:       itemExtractor(),
			FallbackAuthors: map[string]string{"a.com": "House Author"},
		}

		items, _ := r.Acquire(context.Background(), runnerSource(), []string{"https://a.com/1"})

		require.Len(t, items, 1)
		assert.Equal(t, "House Author", items[0].Author)
	})

	t.Run("empty url set issues no work", func(t *testing.T) {
		t.Parallel()

		r := &crawl.Runner{Fetcher: okFetcher(kbharvest.MethodPrimary), Extractor: itemExtractor()}
		items, skipped := r.Acquire(context.Background(), runnerSource(), nil)

		assert.Empty(t, items)
		assert.Empty(t, skipped)
	})
}
