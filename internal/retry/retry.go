// Package retry wraps remote calls with exponential backoff. It is the
// single retry path of the system: every gateway and planner call routes
// through an Executor instead of re-implementing backoff locally.
//
// Only transient failures (types.ErrUnavailable) are retried. Operations
// routed through an Executor must be idempotent: targeted cell updates
// located by key, ensure-style creates, and reads all qualify; blind
// appends do not and are issued exactly once by their callers.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// Operation is one attemptable remote call.
type Operation func(ctx context.Context) error

// Executor retries transient failures with exponential backoff and jitter,
// up to a bounded attempt count. On exhaustion it surfaces the last error
// unchanged in kind. The backoff sleep is the only intentional delay in
// the call path and honors ctx cancellation.
type Executor struct {
	policy types.RetryPolicy

	// sleep is injectable for tests. Defaults to a ctx-aware timer wait.
	sleep func(ctx context.Context, d time.Duration) error

	// jitter returns a multiplier in [1-JitterFactor, 1+JitterFactor].
	jitter func(factor float64) float64
}

// New creates an Executor with the given policy.
func New(policy types.RetryPolicy) *Executor {
	return &Executor{
		policy: policy,
		sleep:  sleepCtx,
		jitter: randomJitter,
	}
}

// Do runs op, retrying transient failures until success, a non-retryable
// error, ctx expiry, or MaxAttempts. Deadline expiry mid-backoff aborts
// further attempts and returns the ctx error rather than silently
// truncating the retry sequence.
func (e *Executor) Do(ctx context.Context, op Operation) error {
	backoff := e.policy.InitialBackoff

	var last error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("aborted before attempt %d: %w", attempt, err)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err

		if !Retryable(err) {
			return err
		}
		if attempt == e.policy.MaxAttempts {
			break
		}

		wait := time.Duration(float64(backoff) * e.jitter(e.policy.JitterFactor))
		if err := e.sleep(ctx, wait); err != nil {
			return fmt.Errorf("aborted during backoff: %w", err)
		}

		backoff = time.Duration(float64(backoff) * e.policy.BackoffFactor)
		if backoff > e.policy.MaxBackoff {
			backoff = e.policy.MaxBackoff
		}
	}
	return last
}

// Retryable reports whether an error belongs to the transient class.
func Retryable(err error) bool {
	return errors.Is(err, types.ErrUnavailable)
}

// SetSleep overrides the backoff sleep. Test hook.
func (e *Executor) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	e.sleep = sleep
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randomJitter spreads backoff across callers to avoid thundering herd.
func randomJitter(factor float64) float64 {
	if factor <= 0 {
		return 1.0
	}
	return 1.0 + (rand.Float64()*2-1)*factor
}
