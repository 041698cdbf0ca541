package crawl

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"kbharvest"
)

var _ kbharvest.HostLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-host rate limiting using token buckets. It
// creates a separate limiter per host, allowing concurrent requests to
// different hosts while enforcing a minimum spacing within each host. It
// is the one piece of mutable state shared across workers and is passed
// into the orchestrator explicitly.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per
// second per host with a burst of 1 (no bursting).
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// NewDomainLimiterDelay creates a DomainLimiter enforcing a minimum
// delay in seconds between requests to the same host.
func NewDomainLimiterDelay(delaySeconds float64) *DomainLimiter {
	if delaySeconds <= 0 {
		delaySeconds = 1.0
	}
	return NewDomainLimiter(1.0 / delaySeconds)
}

// Wait blocks until the rate limit allows a request to the host.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
