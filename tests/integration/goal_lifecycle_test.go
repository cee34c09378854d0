// Package integration exercises the full storage core wired together:
// orchestrator over store over cache, rate limiter, and retry executor,
// against the in-memory gateway. Only the Google backend and the
// planner's model call are faked.
package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/stride/internal/cache"
	"github.com/mesh-intelligence/stride/internal/orchestrator"
	"github.com/mesh-intelligence/stride/internal/ratelimit"
	"github.com/mesh-intelligence/stride/internal/retry"
	"github.com/mesh-intelligence/stride/internal/store"
	"github.com/mesh-intelligence/stride/internal/store/storetest"
	"github.com/mesh-intelligence/stride/pkg/types"
)

const userID int64 = 1001

// scriptedPlanner emits a fixed-length daily plan starting at start.
type scriptedPlanner struct {
	start time.Time
	days  int
}

func (p *scriptedPlanner) GeneratePlan(_ context.Context, req types.PlanRequest) ([]types.PlannedTask, error) {
	plan := make([]types.PlannedTask, p.days)
	for i := range plan {
		plan[i] = types.PlannedTask{
			Date:        p.start.AddDate(0, 0, i),
			Description: fmt.Sprintf("%s: day %d", req.Title, i+1),
		}
	}
	return plan, nil
}

type fixture struct {
	orch *orchestrator.Orchestrator
	gw   *storetest.Gateway
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := types.Default()
	cfg.RateLimit = types.RateLimitPolicy{Calls: 100000, Window: time.Hour}

	gw := storetest.NewGateway()
	exec := retry.New(cfg.Retry)
	exec.SetSleep(func(context.Context, time.Duration) error { return nil })

	s := store.New(gw, cache.New(cfg.CacheTTL), ratelimit.New(cfg.RateLimit), exec, cfg.MaxActiveGoals, nil)

	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	o := orchestrator.New(s, &scriptedPlanner{start: now, days: 5}, nil)
	return &fixture{orch: o, gw: gw, now: now}
}

func meta(title string) types.GoalMeta {
	return types.GoalMeta{
		Title:    title,
		Priority: types.PriorityHigh,
		Deadline: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

// TestGoalLifecycle walks one goal from creation through daily work to
// automatic completion, checking progress at each step.
func TestGoalLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	goalID, err := f.orch.CreateGoal(ctx, userID, meta("Learn Guitar"), 30)
	require.NoError(t, err)

	goals, err := f.orch.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, types.GoalActive, goals[0].Status)
	assert.Equal(t, 0, goals[0].Progress)

	// Work through four of the five days.
	for day := 0; day < 4; day++ {
		completed, err := f.orch.RecordCompletion(ctx, userID, goalID, f.now.AddDate(0, 0, day), types.TaskDone)
		require.NoError(t, err)
		assert.False(t, completed)
	}

	goals, err = f.orch.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 80, goals[0].Progress)

	// The last day completes the goal automatically.
	completed, err := f.orch.RecordCompletion(ctx, userID, goalID, f.now.AddDate(0, 0, 4), types.TaskDone)
	require.NoError(t, err)
	assert.True(t, completed)

	goals, err = f.orch.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, types.GoalCompleted, goals[0].Status)
	assert.Equal(t, 100, goals[0].Progress)

	// A completed goal no longer appears on the agenda.
	items, err := f.orch.Today(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// TestSlotExhaustion fills every active slot, verifies the next create
// is rejected, then frees a slot by archiving and tries again.
func TestSlotExhaustion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var firstID string
	for i := 0; i < 10; i++ {
		id, err := f.orch.CreateGoal(ctx, userID, meta(fmt.Sprintf("goal %02d", i)), 15)
		require.NoError(t, err)
		if i == 0 {
			firstID = id
		}
	}

	_, err := f.orch.CreateGoal(ctx, userID, meta("over the cap"), 15)
	require.ErrorIs(t, err, types.ErrCapacity)

	require.NoError(t, f.orch.Archive(ctx, userID, firstID))

	_, err = f.orch.CreateGoal(ctx, userID, meta("fits again"), 15)
	require.NoError(t, err)

	goals, err := f.orch.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, goals, 11, "archived goals stay listed")
}

// TestDailyAgendaAcrossGoals checks the cross-goal agenda and bulk
// status recording path end to end.
func TestDailyAgendaAcrossGoals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.CreateGoal(ctx, userID, meta("guitar"), 30)
	require.NoError(t, err)
	_, err = f.orch.CreateGoal(ctx, userID, meta("running"), 30)
	require.NoError(t, err)

	items, err := f.orch.Today(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, types.TaskNotDone, item.Task.Status)
		assert.Contains(t, item.Task.Description, "day 1")
	}

	for _, item := range items {
		_, err := f.orch.RecordCompletion(ctx, userID, item.GoalID, f.now, types.TaskDone)
		require.NoError(t, err)
	}

	stats, err := f.orch.Statistics(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DoneTasks)
	assert.Equal(t, 10, stats.TotalTasks)
	assert.Equal(t, 20, stats.Progress)
}

// TestResetStartsOver deletes everything and verifies a clean slate.
func TestResetStartsOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.CreateGoal(ctx, userID, meta("temporary"), 30)
	require.NoError(t, err)

	require.NoError(t, f.orch.Reset(ctx, userID))
	require.False(t, f.gw.HasDocument(userID))

	goals, err := f.orch.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, goals)

	_, err = f.orch.CreateGoal(ctx, userID, meta("fresh start"), 30)
	assert.NoError(t, err)
}
