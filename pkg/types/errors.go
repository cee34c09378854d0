package types

import "errors"

// Backend condition errors. Every Gateway implementation maps its raw
// failures onto exactly these three classes; ErrUnavailable is the only
// one retry policy treats as transient.
var (
	ErrUnavailable = errors.New("backend temporarily unavailable")
	ErrPermission  = errors.New("backend permission denied")
	ErrNotFound    = errors.New("resource not found")
)

// Domain operation errors.
var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrCapacity     = errors.New("active goal capacity reached")
	ErrIntegrity    = errors.New("stored data is malformed")
)

// Validation errors for caller-supplied input.
var (
	ErrInvalidGoal     = errors.New("goal title must not be empty")
	ErrInvalidPriority = errors.New("invalid priority value")
	ErrInvalidStatus   = errors.New("invalid status value")
	ErrInvalidDate     = errors.New("invalid or malformed date")
	ErrEmptyPlan       = errors.New("generated plan contains no tasks")
)
