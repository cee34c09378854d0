package types

import (
	"fmt"
	"time"
)

// Task statuses. The set is closed: any other value read from the backend
// is a data-integrity error, not a silent default.
const (
	TaskNotDone = "not-done"
	TaskDone    = "done"
	TaskPartial = "partial"
)

// validTaskStatuses is the set of recognized task status values.
var validTaskStatuses = map[string]bool{
	TaskNotDone: true,
	TaskDone:    true,
	TaskPartial: true,
}

// ValidTaskStatus reports whether s is a recognized task status.
func ValidTaskStatus(s string) bool {
	return validTaskStatuses[s]
}

// DateLayout is the calendar-date cell format used in goal sheets and the
// index deadline column.
const DateLayout = "02.01.2006"

// Task is one daily work item belonging to exactly one goal.
// Tasks are ordered by date; a goal holds at most one task per date.
type Task struct {
	Date        time.Time // calendar date, time-of-day ignored
	Weekday     string    // derived label, not authoritative
	Description string
	Status      string // one of the Task* constants
}

// StatusUpdate addresses one task status change within a bulk update.
type StatusUpdate struct {
	GoalID string
	Date   time.Time
	Status string // one of the Task* constants
}

// FormatDate renders a date in the sheet cell format (DD.MM.YYYY).
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a sheet cell date. Returns ErrInvalidDate on malformed
// input rather than a bare parse error so callers can classify it.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Weekday returns the derived weekday label for a date.
func Weekday(t time.Time) string {
	return t.Weekday().String()
}
