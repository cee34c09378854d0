// This file is the typed parsing boundary between raw cell arrays and the
// domain entities. Untyped row data never leaves this package: decoding
// happens immediately after every gateway read, and unexpected cell
// content surfaces as ErrIntegrity instead of a silent default.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// Index sheet columns, 1-based.
const (
	idxColGoalID = iota + 1
	idxColTitle
	idxColPriority
	idxColTags
	idxColStatus
	idxColDeadline
	idxColProgress
	idxColCreatedAt
)

// Goal sheet columns, 1-based.
const (
	taskColDate = iota + 1
	taskColWeekday
	taskColTask
	taskColStatus
)

// firstDataRow is the sheet row of the first entity (row 1 is the header).
const firstDataRow = 2

// decodeIndexRow parses one index sheet row into a GoalSummary.
func decodeIndexRow(row []string) (types.GoalSummary, error) {
	if len(row) < idxColProgress {
		return types.GoalSummary{}, fmt.Errorf("index row has %d cells: %w", len(row), types.ErrIntegrity)
	}

	g := types.GoalSummary{
		ID:       row[idxColGoalID-1],
		Title:    row[idxColTitle-1],
		Priority: row[idxColPriority-1],
		Tags:     types.SplitTags(row[idxColTags-1]),
		Status:   row[idxColStatus-1],
	}
	if g.ID == "" {
		return types.GoalSummary{}, fmt.Errorf("index row without goal id: %w", types.ErrIntegrity)
	}
	if !types.ValidGoalStatus(g.Status) {
		return types.GoalSummary{}, fmt.Errorf("goal %s: status %q: %w", g.ID, g.Status, types.ErrIntegrity)
	}
	if !types.ValidPriority(g.Priority) {
		return types.GoalSummary{}, fmt.Errorf("goal %s: priority %q: %w", g.ID, g.Priority, types.ErrIntegrity)
	}

	deadline, err := types.ParseDate(row[idxColDeadline-1])
	if err != nil {
		return types.GoalSummary{}, fmt.Errorf("goal %s: deadline: %w", g.ID, types.ErrIntegrity)
	}
	g.Deadline = deadline

	progress, err := parseProgress(row[idxColProgress-1])
	if err != nil {
		return types.GoalSummary{}, fmt.Errorf("goal %s: progress: %w", g.ID, types.ErrIntegrity)
	}
	g.Progress = progress

	if len(row) >= idxColCreatedAt && row[idxColCreatedAt-1] != "" {
		created, err := time.Parse(time.RFC3339, row[idxColCreatedAt-1])
		if err != nil {
			return types.GoalSummary{}, fmt.Errorf("goal %s: created_at: %w", g.ID, types.ErrIntegrity)
		}
		g.CreatedAt = created
	}
	return g, nil
}

// encodeIndexRow renders a GoalSummary as index sheet cells.
func encodeIndexRow(g types.GoalSummary) []string {
	return []string{
		g.ID,
		g.Title,
		g.Priority,
		types.JoinTags(g.Tags),
		g.Status,
		types.FormatDate(g.Deadline),
		formatProgress(g.Progress),
		g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// decodeTaskRow parses one goal sheet row into a Task.
func decodeTaskRow(row []string) (types.Task, error) {
	if len(row) < taskColStatus {
		return types.Task{}, fmt.Errorf("task row has %d cells: %w", len(row), types.ErrIntegrity)
	}

	date, err := types.ParseDate(row[taskColDate-1])
	if err != nil {
		return types.Task{}, fmt.Errorf("task date %q: %w", row[taskColDate-1], types.ErrIntegrity)
	}
	status := row[taskColStatus-1]
	if !types.ValidTaskStatus(status) {
		return types.Task{}, fmt.Errorf("task status %q: %w", status, types.ErrIntegrity)
	}

	return types.Task{
		Date:        date,
		Weekday:     row[taskColWeekday-1],
		Description: row[taskColTask-1],
		Status:      status,
	}, nil
}

// encodeTaskRow renders a Task as goal sheet cells. The weekday label is
// always re-derived from the date.
func encodeTaskRow(t types.Task) []string {
	return []string{
		types.FormatDate(t.Date),
		types.Weekday(t.Date),
		t.Description,
		t.Status,
	}
}

// decodeTasks parses all rows of a goal sheet. A duplicate date is a
// data-integrity error: the (goal, date) pair is the task's identity.
func decodeTasks(rows [][]string) ([]types.Task, error) {
	tasks := make([]types.Task, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		task, err := decodeTaskRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+firstDataRow, err)
		}
		key := types.FormatDate(task.Date)
		if seen[key] {
			return nil, fmt.Errorf("duplicate task date %s at row %d: %w", key, i+firstDataRow, types.ErrIntegrity)
		}
		seen[key] = true
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// progressPercent computes completed/total as a whole percentage.
// Partial tasks do not count as completed. Zero tasks is zero progress.
func progressPercent(tasks []types.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == types.TaskDone {
			done++
		}
	}
	return done * 100 / len(tasks)
}

// formatProgress renders a percentage as its index cell form.
func formatProgress(p int) string {
	return strconv.Itoa(p) + "%"
}

// parseProgress parses an index progress cell.
func parseProgress(cell string) (int, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(cell), "%")
	p, err := strconv.Atoi(trimmed)
	if err != nil || p < 0 || p > 100 {
		return 0, fmt.Errorf("malformed progress cell %q", cell)
	}
	return p, nil
}
