package mock

import (
	"sync"

	"kbharvest"
)

var _ kbharvest.FetchReporter = (*Reporter)(nil)

// Reporter is a mock FetchReporter that records attempts. Safe for
// concurrent use.
type Reporter struct {
	mu       sync.Mutex
	attempts []kbharvest.FetchAttempt
}

func (r *Reporter) ReportFetch(attempt kbharvest.FetchAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
}

// Attempts returns a copy of the recorded attempts.
func (r *Reporter) Attempts() []kbharvest.FetchAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]kbharvest.FetchAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// AttemptsFor returns the recorded attempts for a URL.
func (r *Reporter) AttemptsFor(url string) []kbharvest.FetchAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []kbharvest.FetchAttempt
	for _, a := range r.attempts {
		if a.URL == url {
			out = append(out, a)
		}
	}
	return out
}
