package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// parsePlan validates and converts a model reply into planned tasks.
// The plan comes back sorted by date regardless of the reply's order.
// Rule violations (duplicate dates, dates outside [start, deadline],
// empty task text) reject the whole plan.
func parsePlan(raw string, req types.PlanRequest) ([]types.PlannedTask, error) {
	var lines []planLine
	if err := json.Unmarshal([]byte(stripFences(raw)), &lines); err != nil {
		return nil, fmt.Errorf("plan reply is not a JSON task array: %w", err)
	}
	if len(lines) == 0 {
		return nil, types.ErrEmptyPlan
	}

	start := midnight(req.StartDate)
	deadline := midnight(req.Deadline)

	tasks := make([]types.PlannedTask, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for i, line := range lines {
		date, err := types.ParseDate(line.Date)
		if err != nil {
			return nil, fmt.Errorf("plan entry %d: %w", i+1, err)
		}
		key := types.FormatDate(date)
		if seen[key] {
			return nil, fmt.Errorf("plan entry %d repeats date %s: %w", i+1, key, types.ErrInvalidDate)
		}
		seen[key] = true

		if !start.IsZero() && date.Before(start) {
			return nil, fmt.Errorf("plan entry %d: date %s precedes start: %w", i+1, key, types.ErrInvalidDate)
		}
		if !deadline.IsZero() && date.After(deadline) {
			return nil, fmt.Errorf("plan entry %d: date %s past deadline: %w", i+1, key, types.ErrInvalidDate)
		}
		if strings.TrimSpace(line.Task) == "" {
			return nil, fmt.Errorf("plan entry %d has no task text: %w", i+1, types.ErrEmptyPlan)
		}

		tasks = append(tasks, types.PlannedTask{Date: date, Description: strings.TrimSpace(line.Task)})
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Date.Before(tasks[j].Date) })
	return tasks, nil
}

// midnight truncates a timestamp to its calendar date in UTC so range
// checks compare dates, not clock times.
func midnight(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
