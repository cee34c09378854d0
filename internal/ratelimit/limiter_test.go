package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// newTestLimiter returns a limiter with a frozen, caller-advanced clock.
func newTestLimiter(t *testing.T, calls int, window time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	l := New(types.RateLimitPolicy{Calls: calls, Window: window})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })
	return l, &now
}

func TestAllowDeniesCallOverBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 5, time.Minute)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow(42), "call %d within budget should pass", i+1)
	}
	assert.False(t, l.Allow(42), "6th call within the window must be denied")
}

func TestAllowRefillsAfterWindow(t *testing.T) {
	l, now := newTestLimiter(t, 5, time.Minute)

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow(42))
	}
	require.False(t, l.Allow(42))

	*now = now.Add(time.Minute)
	assert.True(t, l.Allow(42), "budget should refill after the window elapses")
}

func TestAllowIsolatesUsers(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Minute)

	require.True(t, l.Allow(1))
	require.True(t, l.Allow(1))
	require.False(t, l.Allow(1))

	assert.True(t, l.Allow(2), "another user's budget is independent")
}

func TestAllowConcurrentCallers(t *testing.T) {
	// Hour-long window so no token refills during the test.
	l := New(types.RateLimitPolicy{Calls: 100, Window: time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	// 20 goroutines x 10 calls = 200 attempts against a budget of 100.
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if l.Allow(7) {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed, "concurrent callers must exactly exhaust the budget")
}
