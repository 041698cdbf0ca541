package kbharvest

import (
	"context"
	"net/http"
	"time"
)

// FetchStatus classifies the outcome of a single fetch attempt.
type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"
	FetchBlocked FetchStatus = "blocked"
	FetchError   FetchStatus = "error"
	FetchTimeout FetchStatus = "timeout"
)

// FetchMethod identifies which fetcher produced a result.
type FetchMethod string

const (
	MethodPrimary  FetchMethod = "primary"
	MethodFallback FetchMethod = "fallback"
)

// FetchResult is the outcome of fetching a single URL. It is transient:
// consumed immediately by the extractor and never persisted.
type FetchResult struct {
	URL     string
	Status  FetchStatus
	HTML    string
	Method  FetchMethod
	Elapsed time.Duration
}

// OK reports whether the fetch produced usable content.
func (r *FetchResult) OK() bool {
	return r != nil && r.Status == FetchOK
}

// Fetcher retrieves content from a URL. Network failures are encoded in
// the result's Status; the error return is reserved for programming
// errors such as an unparseable URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// StatusForCode classifies an HTTP response code. Codes typically
// returned by anti-bot layers map to FetchBlocked so the orchestrator
// can escalate to the fallback provider.
func StatusForCode(code int) FetchStatus {
	switch {
	case code >= 200 && code < 300:
		return FetchOK
	case code == http.StatusForbidden,
		code == http.StatusNotAcceptable,
		code == http.StatusTooManyRequests,
		code == http.StatusServiceUnavailable:
		return FetchBlocked
	default:
		return FetchError
	}
}

// FetchAttempt describes one fetch attempt, reported exactly once per
// attempt regardless of outcome.
type FetchAttempt struct {
	URL     string
	Method  FetchMethod
	Status  FetchStatus
	Elapsed time.Duration
	Err     error
}

// FetchReporter receives fetch attempt events for later inspection.
type FetchReporter interface {
	ReportFetch(attempt FetchAttempt)
}

// HostLimiter enforces a minimum spacing between successive requests to
// the same host, independent of worker count.
type HostLimiter interface {
	Wait(ctx context.Context, host string) error
}
