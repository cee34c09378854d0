package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/stride/pkg/types"
)

func TestDecodeIndexRow(t *testing.T) {
	row := []string{
		"0195e2a0-0000-7000-8000-000000000001",
		"Learn Guitar",
		"high",
		"music, hobby",
		"active",
		"31.03.2026",
		"40%",
		"2026-03-01T09:00:00Z",
	}

	g, err := decodeIndexRow(row)
	require.NoError(t, err)
	assert.Equal(t, "Learn Guitar", g.Title)
	assert.Equal(t, types.PriorityHigh, g.Priority)
	assert.Equal(t, []string{"music", "hobby"}, g.Tags)
	assert.Equal(t, types.GoalActive, g.Status)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), g.Deadline)
	assert.Equal(t, 40, g.Progress)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), g.CreatedAt)
}

func TestDecodeIndexRowRejectsMalformedCells(t *testing.T) {
	valid := []string{"id-1", "title", "low", "", "active", "31.03.2026", "0%", ""}

	tests := []struct {
		name   string
		mutate func(row []string) []string
	}{
		{"too few cells", func(r []string) []string { return r[:4] }},
		{"empty goal id", func(r []string) []string { r[0] = ""; return r }},
		{"unknown status", func(r []string) []string { r[4] = "paused"; return r }},
		{"unknown priority", func(r []string) []string { r[2] = "urgent"; return r }},
		{"bad deadline", func(r []string) []string { r[5] = "2026-03-31"; return r }},
		{"bad progress", func(r []string) []string { r[6] = "lots"; return r }},
		{"progress out of range", func(r []string) []string { r[6] = "140%"; return r }},
		{"bad created_at", func(r []string) []string { r[7] = "yesterday"; return r }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.mutate(append([]string(nil), valid...))
			_, err := decodeIndexRow(row)
			assert.ErrorIs(t, err, types.ErrIntegrity)
		})
	}
}

func TestIndexRowRoundTrip(t *testing.T) {
	g := types.GoalSummary{
		ID:        "id-7",
		Title:     "Run 10k",
		Priority:  types.PriorityMedium,
		Tags:      []string{"health"},
		Status:    types.GoalActive,
		Deadline:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Progress:  25,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	got, err := decodeIndexRow(encodeIndexRow(g))
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestDecodeTaskRow(t *testing.T) {
	task, err := decodeTaskRow([]string{"02.03.2026", "Monday", "practice scales", "partial"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), task.Date)
	assert.Equal(t, "practice scales", task.Description)
	assert.Equal(t, types.TaskPartial, task.Status)
}

func TestDecodeTaskRowRejectsUnknownStatus(t *testing.T) {
	_, err := decodeTaskRow([]string{"02.03.2026", "Monday", "practice", "skipped"})
	assert.ErrorIs(t, err, types.ErrIntegrity)
}

func TestEncodeTaskRowDerivesWeekday(t *testing.T) {
	row := encodeTaskRow(types.Task{
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Weekday:     "Someday", // stale label is never trusted
		Description: "practice",
		Status:      types.TaskNotDone,
	})
	assert.Equal(t, []string{"02.03.2026", "Monday", "practice", "not-done"}, row)
}

func TestDecodeTasksRejectsDuplicateDates(t *testing.T) {
	_, err := decodeTasks([][]string{
		{"02.03.2026", "Monday", "one", "done"},
		{"02.03.2026", "Monday", "two", "not-done"},
	})
	assert.ErrorIs(t, err, types.ErrIntegrity)
}

func TestProgressPercent(t *testing.T) {
	tasks := func(statuses ...string) []types.Task {
		out := make([]types.Task, len(statuses))
		for i, s := range statuses {
			out[i] = types.Task{Status: s}
		}
		return out
	}

	tests := []struct {
		name  string
		tasks []types.Task
		want  int
	}{
		{"no tasks", nil, 0},
		{"none done", tasks("not-done", "not-done"), 0},
		{"partial is not done", tasks("partial", "partial"), 0},
		{"one of three", tasks("done", "not-done", "not-done"), 33},
		{"all done", tasks("done", "done"), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progressPercent(tt.tasks))
		})
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		cell    string
		want    int
		wantErr bool
	}{
		{"0%", 0, false},
		{"100%", 100, false},
		{" 42% ", 42, false},
		{"55", 55, false},
		{"-5%", 0, true},
		{"120%", 0, true},
		{"n/a", 0, true},
	}
	for _, tt := range tests {
		got, err := parseProgress(tt.cell)
		if tt.wantErr {
			assert.Error(t, err, "cell %q", tt.cell)
			continue
		}
		require.NoError(t, err, "cell %q", tt.cell)
		assert.Equal(t, tt.want, got)
	}
}
