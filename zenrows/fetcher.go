// Package zenrows implements the fallback fetch provider adapter. The
// provider renders JavaScript and rotates proxies server-side, so it is
// invoked only after the primary fetcher fails or when forced.
package zenrows

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kbharvest"
)

// DefaultEndpoint is the provider's proxy API endpoint.
const DefaultEndpoint = "https://api.zenrows.com/v1/"

// DefaultTimeout is the default per-request deadline. Rendered fetches
// are slower than direct ones, so this is deliberately generous.
const DefaultTimeout = 30 * time.Second

// renderWait is how long the provider waits for client-side rendering
// before capturing the page, in milliseconds.
const renderWait = 2000

// Ensure Fetcher implements kbharvest.Fetcher at compile time.
var _ kbharvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML through the provider's proxy API.
type Fetcher struct {
	client   *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
	premium  bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithEndpoint overrides the provider endpoint. Used in tests.
func WithEndpoint(endpoint string) Option {
	return func(f *Fetcher) {
		f.endpoint = endpoint
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithPremium enables JS rendering and premium proxies on every request.
func WithPremium(premium bool) Option {
	return func(f *Fetcher) {
		f.premium = premium
	}
}

// NewFetcher creates a Fetcher authenticated with the given API key.
func NewFetcher(apiKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoint: DefaultEndpoint,
		apiKey:   apiKey,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves rendered content for targetURL through the provider.
// Provider-side failures are encoded in the result's Status.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*kbharvest.FetchResult, error) {
	if f.apiKey == "" {
		return nil, kbharvest.Errorf(kbharvest.ECONFIG, "fallback api key not configured")
	}

	start := time.Now()

	params := url.Values{}
	params.Set("url", targetURL)
	params.Set("apikey", f.apiKey)
	if f.premium {
		params.Set("js_render", "true")
		params.Set("premium_proxy", "true")
		params.Set("wait", strconv.Itoa(renderWait))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.EINVALID, "invalid fallback request for %q: %v", targetURL, err)
	}

	result := &kbharvest.FetchResult{
		URL:    targetURL,
		Method: kbharvest.MethodFallback,
	}

	resp, err := f.client.Do(req)
	if err != nil {
		result.Elapsed = time.Since(start)
		result.Status = kbharvest.FetchError
		if ctx.Err() != nil || isTimeout(err) {
			result.Status = kbharvest.FetchTimeout
		}
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

func isTimeout(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}
