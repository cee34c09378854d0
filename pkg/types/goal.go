package types

import (
	"strings"
	"time"
)

// Goal statuses. A goal starts active and leaves the active set only by
// completion or archival; archived goals are retained, never deleted,
// except on full account reset.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalArchived  = "archived"
)

// validGoalStatuses is the set of recognized goal status values.
var validGoalStatuses = map[string]bool{
	GoalActive:    true,
	GoalCompleted: true,
	GoalArchived:  true,
}

// ValidGoalStatus reports whether s is a recognized goal status.
func ValidGoalStatus(s string) bool {
	return validGoalStatuses[s]
}

// Goal priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// validPriorities is the set of recognized priority values.
var validPriorities = map[string]bool{
	PriorityHigh:   true,
	PriorityMedium: true,
	PriorityLow:    true,
}

// ValidPriority reports whether s is a recognized priority.
func ValidPriority(s string) bool {
	return validPriorities[s]
}

// PriorityRank orders priorities for merge/sort: high before medium before
// low. Unknown values sort last.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// GoalMeta carries the caller-supplied attributes of a goal at creation.
// The store assigns the ID, status, and creation timestamp.
type GoalMeta struct {
	Title       string
	Description string
	Priority    string    // one of the Priority* constants
	Tags        []string  // unordered set of short labels
	Deadline    time.Time // calendar date
}

// Validate checks that the metadata is well-formed. Returns a sentinel
// error from this package on failure.
func (m GoalMeta) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrInvalidGoal
	}
	if !ValidPriority(m.Priority) {
		return ErrInvalidPriority
	}
	if m.Deadline.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// GoalSummary is one row of the per-user index sheet plus the computed
// progress figure. It is the unit returned by ListGoals.
type GoalSummary struct {
	ID        string
	Title     string
	Priority  string
	Tags      []string
	Status    string
	Deadline  time.Time
	Progress  int // completed tasks as a percentage, 0..100
	CreatedAt time.Time
}

// Active reports whether the goal currently occupies an active slot.
func (g GoalSummary) Active() bool {
	return g.Status == GoalActive
}

// JoinTags serializes a tag set into its index cell form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// SplitTags parses an index tag cell back into a tag set.
// An empty cell yields a nil slice.
func SplitTags(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
