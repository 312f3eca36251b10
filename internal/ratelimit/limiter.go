package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles scans per target host. Even a single marketplace
// gets aggressive about bursts of headless traffic, so the default
// posture is slow.
type RateLimiter interface {
	// Wait blocks until a scan of the given URL may proceed, or the
	// context is cancelled.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a scan may proceed right now without waiting.
	Allow(urlStr string) bool
}

// DomainLimiter is a token-bucket limiter keyed by host.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a per-host limiter. Zero or negative inputs
// fall back to one scan per second with a burst of two, which is slow
// enough for sustained marketplace scanning.
func NewDomainLimiter(scansPerSecond float64, burst int) *DomainLimiter {
	if scansPerSecond <= 0 {
		scansPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 2
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(scansPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the host's bucket has a token.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	host := extractHost(urlStr)
	if host == "" {
		// Unparseable URL; let URL validation report it.
		return nil
	}

	return dl.getLimiter(host).Wait(ctx)
}

// Allow reports whether a token is available without blocking.
func (dl *DomainLimiter) Allow(urlStr string) bool {
	host := extractHost(urlStr)
	if host == "" {
		return true
	}
	return dl.getLimiter(host).Allow()
}

func (dl *DomainLimiter) getLimiter(host string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[host]
	dl.mu.RUnlock()

	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = limiter

	return limiter
}

// SetLimit overrides the rate for one host.
func (dl *DomainLimiter) SetLimit(host string, scansPerSecond float64, burst int) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[host]; exists {
		limiter.SetLimit(rate.Limit(scansPerSecond))
		limiter.SetBurst(burst)
	} else {
		dl.limiters[host] = rate.NewLimiter(rate.Limit(scansPerSecond), burst)
	}
}

func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
