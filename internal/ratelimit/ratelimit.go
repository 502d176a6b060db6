package ratelimit

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/amishk599/jobapplicator/internal/model"
)

// HostRateLimiter enforces a minimum delay between requests to the same key.
// Callers key by SiteKey, so every Craigslist city shares craigslist.org.
type HostRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: host
	minDelay time.Duration
}

// NewHostRateLimiter creates a rate limiter that spaces consecutive requests
// to the same host by minDelay. A zero delay disables pacing.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (r *HostRateLimiter) limiter(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[host]
	if !ok {
		limit := rate.Inf
		if r.minDelay > 0 {
			limit = rate.Every(r.minDelay)
		}
		l = rate.NewLimiter(limit, 1)
		r.limiters[host] = l
	}
	return l
}

// Wait blocks until a request to host is allowed.
// Returns an error if the context is cancelled while waiting.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	if err := r.limiter(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// SiteKey returns the registrable domain of host ("sfbay.craigslist.org"
// becomes "craigslist.org"). Hosts without one, such as IPs and localhost,
// are returned without their port.
func SiteKey(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return host
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}

// RateLimitedFetcher is a decorator that paces requests per host before
// delegating to the wrapped JobFetcher.
type RateLimitedFetcher struct {
	inner   model.JobFetcher
	limiter *HostRateLimiter
	host    string
}

// NewRateLimitedFetcher wraps a JobFetcher with host-level rate limiting.
// All fetchers targeting the same host should share the same limiter instance.
func NewRateLimitedFetcher(inner model.JobFetcher, limiter *HostRateLimiter, host string) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		host:    host,
	}
}

// FetchJobs waits for the limiter, then delegates to the wrapped fetcher.
func (f *RateLimitedFetcher) FetchJobs(ctx context.Context) ([]model.Job, error) {
	if err := f.limiter.Wait(ctx, f.host); err != nil {
		return nil, err
	}
	return f.inner.FetchJobs(ctx)
}
