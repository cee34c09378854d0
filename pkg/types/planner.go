package types

import (
	"context"
	"time"
)

// PlanRequest describes a goal for which a daily task plan is wanted.
type PlanRequest struct {
	Title        string
	Description  string
	Deadline     time.Time
	DailyMinutes int       // time the user can spend per day
	StartDate    time.Time // first plannable day, normally today
}

// PlannedTask is one generated daily task. Dates are unique within a plan
// and never past the deadline.
type PlannedTask struct {
	Date        time.Time
	Description string
}

// Planner produces an ordered daily task list for a goal. Implementations
// call an external text-generation service and are treated as unreliable
// and slow; callers apply their own retry and timeout policy, separate
// from the spreadsheet gateway's.
type Planner interface {
	GeneratePlan(ctx context.Context, req PlanRequest) ([]PlannedTask, error)
}
