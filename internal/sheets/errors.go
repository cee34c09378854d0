package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// classify translates a Google API failure into the standard taxonomy so
// nothing backend-specific leaks past this package. Transient conditions
// (quota, 5xx, network) become ErrUnavailable; auth failures become
// ErrPermission and are never retried; missing resources become
// ErrNotFound so callers can apply create-on-demand where that is safe.
// The underlying cause stays attached for logs.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	// Context expiry is the caller's deadline, not a backend condition.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 429 || gerr.Code >= 500 || quotaReason(gerr):
			return fmt.Errorf("%s: %v: %w", op, err, types.ErrUnavailable)
		case gerr.Code == 401 || gerr.Code == 403:
			return fmt.Errorf("%s: %v: %w", op, err, types.ErrPermission)
		case gerr.Code == 404 || badRange(gerr):
			return fmt.Errorf("%s: %v: %w", op, err, types.ErrNotFound)
		default:
			// Remaining 4xx are caller bugs; surface unchanged, unretried.
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	// Anything non-HTTP (DNS, TCP resets, TLS timeouts) is transient.
	return fmt.Errorf("%s: %v: %w", op, err, types.ErrUnavailable)
}

// quotaReason detects rate-limit responses that arrive as 403 instead
// of 429.
func quotaReason(gerr *googleapi.Error) bool {
	for _, e := range gerr.Errors {
		switch e.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded":
			return true
		}
	}
	return false
}

// badRange detects the 400 the values API returns when a range names a
// worksheet that does not exist.
func badRange(gerr *googleapi.Error) bool {
	return gerr.Code == 400 && strings.Contains(gerr.Message, "Unable to parse range")
}
