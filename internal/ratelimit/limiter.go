// Package ratelimit bounds outbound backend calls per user within a rolling
// time window. The limiter never queues or blocks: a denied caller must
// back off and try again later.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// Limiter tracks one token bucket per user, sized so that at most
// policy.Calls calls pass within each policy.Window. Safe for concurrent
// use; per-user buckets are created on first sight of the user, so traffic
// for unrelated users never contends on anything but the map lock.
type Limiter struct {
	mu      sync.Mutex
	buckets map[int64]*rate.Limiter
	limit   rate.Limit
	burst   int

	// now is injectable for tests. Defaults to time.Now.
	now func() time.Time
}

// New creates a Limiter enforcing the given per-user policy.
func New(policy types.RateLimitPolicy) *Limiter {
	interval := policy.Window / time.Duration(policy.Calls)
	return &Limiter{
		buckets: make(map[int64]*rate.Limiter),
		limit:   rate.Every(interval),
		burst:   policy.Calls,
		now:     time.Now,
	}
}

// Allow reports whether one more backend call for the user may proceed
// right now. O(1) amortized, non-blocking.
func (l *Limiter) Allow(userID int64) bool {
	l.mu.Lock()
	b, ok := l.buckets[userID]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[userID] = b
	}
	now := l.now()
	l.mu.Unlock()

	return b.AllowN(now, 1)
}

// SetClock overrides the time source. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
