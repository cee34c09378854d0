// Package orchestrator composes the planner and the store into the
// user-facing goal workflows: create a goal from a generated plan, fetch
// the day's agenda across all active goals, record completions, and
// aggregate statistics. It holds no state of its own; everything it
// returns is derived from the store on each call.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mesh-intelligence/stride/internal/store"
	"github.com/mesh-intelligence/stride/pkg/types"
)

// Orchestrator drives the goal lifecycle end to end.
type Orchestrator struct {
	store   *store.Store
	planner types.Planner
	log     *slog.Logger

	// clock is injectable for tests.
	clock func() time.Time
}

// New creates an Orchestrator.
func New(s *store.Store, p types.Planner, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{store: s, planner: p, log: log, clock: time.Now}
}

// TodayItem is one goal's task for the day, tagged with enough goal
// context to render an agenda line.
type TodayItem struct {
	GoalID    string
	GoalTitle string
	Priority  string
	Task      types.Task
}

// GoalStat is one goal's completion figures.
type GoalStat struct {
	GoalID   string
	Title    string
	Status   string
	Done     int
	Total    int
	Progress int
}

// Statistics aggregates completion across all of a user's goals.
type Statistics struct {
	Goals      []GoalStat
	DoneTasks  int
	TotalTasks int
	Progress   int // overall done/total percentage
}

// CreateGoal generates a daily plan for the goal and persists both in
// one store call. Planning happens before any slot is taken, so a
// planner failure never consumes capacity.
func (o *Orchestrator) CreateGoal(ctx context.Context, userID int64, meta types.GoalMeta, dailyMinutes int) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}

	plan, err := o.planner.GeneratePlan(ctx, types.PlanRequest{
		Title:        meta.Title,
		Description:  meta.Description,
		Deadline:     meta.Deadline,
		DailyMinutes: dailyMinutes,
		StartDate:    o.clock(),
	})
	if err != nil {
		return "", fmt.Errorf("planning %q: %w", meta.Title, err)
	}
	if len(plan) == 0 {
		return "", types.ErrEmptyPlan
	}

	goalID, err := o.store.CreateGoal(ctx, userID, meta, plan)
	if err != nil {
		return "", err
	}
	return goalID, nil
}

// Today returns the day's task for every active goal, ordered by goal
// priority (high first). Goals without a task for the date are simply
// absent; an empty agenda is a normal result.
func (o *Orchestrator) Today(ctx context.Context, userID int64) ([]TodayItem, error) {
	goals, err := o.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	date := o.clock()
	items := make([]TodayItem, 0, len(goals))
	for _, g := range goals {
		if !g.Active() {
			continue
		}
		task, err := o.store.GetTodayTask(ctx, userID, g.ID, date)
		if err != nil {
			return nil, err
		}
		if task == nil {
			continue
		}
		items = append(items, TodayItem{
			GoalID:    g.ID,
			GoalTitle: g.Title,
			Priority:  g.Priority,
			Task:      *task,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return types.PriorityRank(items[i].Priority) < types.PriorityRank(items[j].Priority)
	})
	return items, nil
}

// RecordCompletion sets the task's status for the date. When the change
// brings the goal to fully done, the goal is completed in the same call
// and the returned flag is true.
func (o *Orchestrator) RecordCompletion(ctx context.Context, userID int64, goalID string, date time.Time, status string) (completed bool, err error) {
	if err := o.store.UpdateTaskStatus(ctx, userID, goalID, date, status); err != nil {
		return false, err
	}
	if status != types.TaskDone {
		return false, nil
	}

	done, total, err := o.store.GoalProgress(ctx, userID, goalID)
	if err != nil {
		return false, err
	}
	if total == 0 || done < total {
		return false, nil
	}

	if err := o.store.CompleteGoal(ctx, userID, goalID); err != nil {
		return false, err
	}
	o.log.Info("goal completed", "user_id", userID, "goal_id", goalID)
	return true, nil
}

// Statistics returns per-goal and overall completion figures across
// every goal the user has, including completed and archived ones.
func (o *Orchestrator) Statistics(ctx context.Context, userID int64) (Statistics, error) {
	goals, err := o.store.ListGoals(ctx, userID)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{Goals: make([]GoalStat, 0, len(goals))}
	for _, g := range goals {
		done, total, err := o.store.GoalProgress(ctx, userID, g.ID)
		if err != nil {
			return Statistics{}, err
		}
		progress := 0
		if total > 0 {
			progress = done * 100 / total
		}
		stats.Goals = append(stats.Goals, GoalStat{
			GoalID:   g.ID,
			Title:    g.Title,
			Status:   g.Status,
			Done:     done,
			Total:    total,
			Progress: progress,
		})
		stats.DoneTasks += done
		stats.TotalTasks += total
	}
	if stats.TotalTasks > 0 {
		stats.Progress = stats.DoneTasks * 100 / stats.TotalTasks
	}
	return stats, nil
}

// Archive removes the goal from the active set, keeping its history.
func (o *Orchestrator) Archive(ctx context.Context, userID int64, goalID string) error {
	return o.store.ArchiveGoal(ctx, userID, goalID)
}

// Reset deletes the user's entire document and all goal history.
func (o *Orchestrator) Reset(ctx context.Context, userID int64) error {
	return o.store.DeleteAccount(ctx, userID)
}

// List returns all of the user's goals with current progress.
func (o *Orchestrator) List(ctx context.Context, userID int64) ([]types.GoalSummary, error) {
	return o.store.ListGoals(ctx, userID)
}
