// Package ratelimit enforces a minimum delay between requests to the
// same site so checks across many products never hammer one domain.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between two requests to one
// domain when no per-domain override is configured.
const DefaultInterval = 5 * time.Second

// domainSlot tracks when a domain's next request may start. The slot
// mutex is held while waiting so concurrent callers for the same domain
// queue up one at a time.
type domainSlot struct {
	mu   sync.Mutex
	next time.Time
}

// DomainLimiter spaces requests per domain. It is safe for concurrent
// use across any number of check tasks.
type DomainLimiter struct {
	defaultInterval time.Duration

	mu        sync.Mutex
	slots     map[string]*domainSlot
	intervals map[string]time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// NewDomainLimiter creates a limiter with the given default spacing.
// A non-positive interval falls back to DefaultInterval.
func NewDomainLimiter(defaultInterval time.Duration) *DomainLimiter {
	if defaultInterval <= 0 {
		defaultInterval = DefaultInterval
	}
	return &DomainLimiter{
		defaultInterval: defaultInterval,
		slots:           make(map[string]*domainSlot),
		intervals:       make(map[string]time.Duration),
		now:             time.Now,
	}
}

// SetInterval overrides the spacing for one domain. A non-positive
// interval removes the override.
func (l *DomainLimiter) SetInterval(domain string, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if interval <= 0 {
		delete(l.intervals, domain)
		return
	}
	l.intervals[domain] = interval
}

// Interval returns the spacing in effect for a domain.
func (l *DomainLimiter) Interval(domain string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if interval, ok := l.intervals[domain]; ok {
		return interval
	}
	return l.defaultInterval
}

// Acquire blocks until the domain's spacing allows another request, then
// reserves the next slot. It returns early with the context error if the
// context is done first.
func (l *DomainLimiter) Acquire(ctx context.Context, domain string) error {
	slot := l.slot(domain)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	now := l.now()
	wait := slot.next.Sub(now)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limit wait for %s: %w", domain, ctx.Err())
		case <-timer.C:
			now = l.now()
		}
	}

	slot.next = now.Add(l.Interval(domain))
	return nil
}

func (l *DomainLimiter) slot(domain string) *domainSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slot, ok := l.slots[domain]; ok {
		return slot
	}
	slot := &domainSlot{}
	l.slots[domain] = slot
	return slot
}
