// Package http provides the primary HTTP fetcher and sitemap-based link
// discovery. The fetcher does not execute JavaScript; pages that need
// rendering are handled by the fallback provider after escalation.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"kbharvest"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 15 * time.Second

// Ensure Fetcher implements kbharvest.Fetcher at compile time.
var _ kbharvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests and
// classifies the outcome into a fetch status.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the identification header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: kbharvest.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the content at url. Network and HTTP-level failures
// are encoded in the result's Status; the error return is reserved for
// request construction failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*kbharvest.FetchResult, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.EINVALID, "invalid url %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	result := &kbharvest.FetchResult{
		URL:    url,
		Method: kbharvest.MethodPrimary,
	}

	resp, err := f.client.Do(req)
	if err != nil {
		result.Elapsed = time.Since(start)
		result.Status = statusForNetErr(err)
		return result, nil
	}
	defer resp.Body.Close()

	result.Status = kbharvest.StatusForCode(resp.StatusCode)
	if result.Status == kbharvest.FetchOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			result.Status = kbharvest.FetchError
		} else {
			result.HTML = string(body)
		}
	}
	result.Elapsed = time.Since(start)

	return result, nil
}

// statusForNetErr distinguishes deadline expiry from other transport
// failures. A timeout escalates the same way an error does, but the
// distinction matters in the run summary.
func statusForNetErr(err error) kbharvest.FetchStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return kbharvest.FetchTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return kbharvest.FetchTimeout
	}
	return kbharvest.FetchError
}
