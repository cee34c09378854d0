// Package store maps the goal/task domain model onto the remote
// spreadsheet backend. It is the only layer that composes the gateway,
// the read-through cache, the per-user rate limiter, and the retry
// executor; callers above it see domain entities and the standard error
// taxonomy, never raw backend rows or backend-specific failures.
//
// Every remote call funnels through one of two wrappers. remote gates the
// call on the rate limiter and retries transient failures; it carries
// only idempotent operations (reads, ensure-creates, targeted cell
// updates that write the same value to the same cell on every attempt).
// remoteOnce retries the limiter gate but issues the call itself at most
// once; appends go through it because a replayed append whose first
// attempt actually landed would duplicate rows.
//
// Writes for a single (user, goal) pair are applied in the order issued:
// batching only coalesces cells within one logical call, never across
// separate caller-issued writes. Cache invalidation is synchronous and
// precedes the success return, so a read issued after a successful write
// from the same process never observes the overwritten snapshot.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/stride/internal/cache"
	"github.com/mesh-intelligence/stride/internal/ratelimit"
	"github.com/mesh-intelligence/stride/internal/retry"
	"github.com/mesh-intelligence/stride/pkg/types"
)

// errRateLimited marks a local limiter denial. It is transient by
// definition: the retry executor backs off and tries the gate again,
// and the gateway is never invoked for a denied call.
var errRateLimited = fmt.Errorf("local rate limit: %w", types.ErrUnavailable)

// Store implements the domain-level goal operations.
type Store struct {
	gw        types.Gateway
	cache     *cache.Cache
	limiter   *ratelimit.Limiter
	exec      *retry.Executor
	log       *slog.Logger
	maxActive int

	// userMu serializes index-mutating operations per user so the
	// active-goal cap holds even under concurrent creates.
	mu     sync.Mutex
	userMu map[int64]*sync.Mutex

	// clock and newID are injectable for tests.
	clock func() time.Time
	newID func() string
}

// New creates a Store over the given collaborators. maxActive caps the
// number of simultaneously active goals per user.
func New(gw types.Gateway, c *cache.Cache, l *ratelimit.Limiter, e *retry.Executor, maxActive int, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		gw:        gw,
		cache:     c,
		limiter:   l,
		exec:      e,
		log:       log,
		maxActive: maxActive,
		userMu:    make(map[int64]*sync.Mutex),
		clock:     time.Now,
		newID:     newGoalID,
	}
}

// newGoalID generates a goal ID. UUID v7 keeps IDs time-ordered so index
// rows sort by creation.
func newGoalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// CreateGoal allocates a goal slot, creates the goal sheet, appends the
// initial task rows in one batched call, and appends the index row.
//
// The three remote effects are not transactional on the backend. The
// sheet is created before the index row on purpose: a failure in between
// leaves an orphan worksheet the index never references, which is
// harmless and cleanable, instead of an index entry pointing at nothing.
func (s *Store) CreateGoal(ctx context.Context, userID int64, meta types.GoalMeta, tasks []types.PlannedTask) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}
	initial, err := plannedToTasks(tasks)
	if err != nil {
		return "", err
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return "", err
	}

	goals, err := s.readIndex(ctx, doc)
	if err != nil {
		return "", err
	}
	active := 0
	for _, g := range goals {
		if g.Active() {
			active++
		}
	}
	if active >= s.maxActive {
		return "", fmt.Errorf("user %d has %d active goals: %w", userID, active, types.ErrCapacity)
	}

	goalID := s.newID()
	var sheet types.SheetHandle
	err = s.remote(ctx, userID, func(ctx context.Context) error {
		var err error
		sheet, err = s.gw.EnsureGoalSheet(ctx, doc, goalID)
		return err
	})
	if err != nil {
		return "", err
	}

	if len(initial) > 0 {
		rows := make([][]string, len(initial))
		for i, t := range initial {
			rows[i] = encodeTaskRow(t)
		}
		err = s.remoteOnce(ctx, userID, func(ctx context.Context) error {
			return s.gw.AppendRows(ctx, sheet, rows)
		})
		if err != nil {
			return "", err
		}
	}

	summary := types.GoalSummary{
		ID:        goalID,
		Title:     meta.Title,
		Priority:  meta.Priority,
		Tags:      meta.Tags,
		Status:    types.GoalActive,
		Deadline:  meta.Deadline,
		Progress:  0,
		CreatedAt: s.clock().UTC(),
	}
	err = s.remoteOnce(ctx, userID, func(ctx context.Context) error {
		return s.gw.AppendRows(ctx, s.indexSheet(doc), [][]string{encodeIndexRow(summary)})
	})
	if err != nil {
		return "", err
	}

	s.cache.Invalidate(cache.Key{UserID: userID, Sheet: types.IndexSheet})
	s.cache.Invalidate(cache.Key{UserID: userID, Sheet: sheet.Title})

	s.log.Info("created goal",
		"user_id", userID, "goal_id", goalID, "tasks", len(initial), "deadline", types.FormatDate(meta.Deadline))
	return goalID, nil
}

// GetTodayTask returns the goal's task for the given date, or nil if no
// row matches the date. A dateless day is a normal outcome, not an error.
func (s *Store) GetTodayTask(ctx context.Context, userID int64, goalID string, date time.Time) (*types.Task, error) {
	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, _, err := s.goalTasks(ctx, doc, goalID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if types.SameDate(tasks[i].Date, date) {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// UpdateTaskStatus locates the task row by date and issues one targeted
// cell write, then drops the sheet's cache entry before returning.
func (s *Store) UpdateTaskStatus(ctx context.Context, userID int64, goalID string, date time.Time, status string) error {
	if !types.ValidTaskStatus(status) {
		return fmt.Errorf("status %q: %w", status, types.ErrInvalidStatus)
	}

	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return err
	}
	tasks, sheet, err := s.goalTasks(ctx, doc, goalID)
	if err != nil {
		return err
	}

	row := -1
	for i := range tasks {
		if types.SameDate(tasks[i].Date, date) {
			row = i + firstDataRow
			break
		}
	}
	if row < 0 {
		return fmt.Errorf("no task on %s for goal %s: %w", types.FormatDate(date), goalID, types.ErrNotFound)
	}

	err = s.remote(ctx, userID, func(ctx context.Context) error {
		return s.gw.BatchWrite(ctx, sheet, []types.CellUpdate{{Row: row, Col: taskColStatus, Value: status}})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(cache.Key{UserID: userID, Sheet: sheet.Title})
	return nil
}

// BatchUpdateStatuses applies many status changes with one batched write
// per touched goal sheet, never one write per update.
func (s *Store) BatchUpdateStatuses(ctx context.Context, userID int64, updates []types.StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if !types.ValidTaskStatus(u.Status) {
			return fmt.Errorf("status %q: %w", u.Status, types.ErrInvalidStatus)
		}
	}

	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return err
	}

	// Group by goal, preserving first-seen goal order.
	order := make([]string, 0, len(updates))
	byGoal := make(map[string][]types.StatusUpdate)
	for _, u := range updates {
		if _, ok := byGoal[u.GoalID]; !ok {
			order = append(order, u.GoalID)
		}
		byGoal[u.GoalID] = append(byGoal[u.GoalID], u)
	}

	for _, goalID := range order {
		tasks, sheet, err := s.goalTasks(ctx, doc, goalID)
		if err != nil {
			return err
		}

		cells := make([]types.CellUpdate, 0, len(byGoal[goalID]))
		for _, u := range byGoal[goalID] {
			row := -1
			for i := range tasks {
				if types.SameDate(tasks[i].Date, u.Date) {
					row = i + firstDataRow
					break
				}
			}
			if row < 0 {
				return fmt.Errorf("no task on %s for goal %s: %w", types.FormatDate(u.Date), goalID, types.ErrNotFound)
			}
			cells = append(cells, types.CellUpdate{Row: row, Col: taskColStatus, Value: u.Status})
		}

		err = s.remote(ctx, userID, func(ctx context.Context) error {
			return s.gw.BatchWrite(ctx, sheet, cells)
		})
		if err != nil {
			return err
		}
		s.cache.Invalidate(cache.Key{UserID: userID, Sheet: sheet.Title})
	}
	return nil
}

// ListGoals reads the index once and returns every goal. Progress for
// active goals is computed live from their task rows (the same reads the
// daily fan-out needs, so the cache keeps this cheap); completed and
// archived goals report the final progress recorded in their index row.
func (s *Store) ListGoals(ctx context.Context, userID int64) ([]types.GoalSummary, error) {
	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.readIndex(ctx, doc)
	if err != nil {
		return nil, err
	}

	for i := range goals {
		if !goals[i].Active() {
			continue
		}
		done, total, err := s.goalCounts(ctx, doc, goals[i].ID)
		if err != nil {
			return nil, err
		}
		if total > 0 {
			goals[i].Progress = done * 100 / total
		}
	}
	return goals, nil
}

// GoalProgress returns the completed and total task counts for one goal.
func (s *Store) GoalProgress(ctx context.Context, userID int64, goalID string) (done, total int, err error) {
	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return s.goalCounts(ctx, doc, goalID)
}

// ArchiveGoal frees the goal's active slot. The goal sheet is retained.
func (s *Store) ArchiveGoal(ctx context.Context, userID int64, goalID string) error {
	return s.setGoalStatus(ctx, userID, goalID, types.GoalArchived)
}

// CompleteGoal marks the goal completed, freeing its active slot.
func (s *Store) CompleteGoal(ctx context.Context, userID int64, goalID string) error {
	return s.setGoalStatus(ctx, userID, goalID, types.GoalCompleted)
}

// setGoalStatus rewrites the goal's index status cell and refreshes its
// recorded progress in the same batched call.
func (s *Store) setGoalStatus(ctx context.Context, userID int64, goalID, status string) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return err
	}
	goals, err := s.readIndex(ctx, doc)
	if err != nil {
		return err
	}

	row := -1
	for i, g := range goals {
		if g.ID == goalID {
			row = i + firstDataRow
			break
		}
	}
	if row < 0 {
		return fmt.Errorf("goal %s: %w", goalID, types.ErrGoalNotFound)
	}

	done, total, err := s.goalCounts(ctx, doc, goalID)
	if err != nil {
		return err
	}
	progress := 0
	if total > 0 {
		progress = done * 100 / total
	}

	err = s.remote(ctx, userID, func(ctx context.Context) error {
		return s.gw.BatchWrite(ctx, s.indexSheet(doc), []types.CellUpdate{
			{Row: row, Col: idxColStatus, Value: status},
			{Row: row, Col: idxColProgress, Value: formatProgress(progress)},
		})
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(cache.Key{UserID: userID, Sheet: types.IndexSheet})
	s.log.Info("goal status changed", "user_id", userID, "goal_id", goalID, "status", status)
	return nil
}

// DeleteAccount tears down the user's entire document. Archived goals are
// otherwise never physically deleted; this is the one exception.
func (s *Store) DeleteAccount(ctx context.Context, userID int64) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	doc, err := s.ensureDocument(ctx, userID)
	if err != nil {
		return err
	}
	err = s.remote(ctx, userID, func(ctx context.Context) error {
		return s.gw.DeleteDocument(ctx, doc)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateUser(userID)
	s.log.Info("account reset", "user_id", userID)
	return nil
}

// ---- internals ----

// ensureDocument resolves the user's document through the gateway.
func (s *Store) ensureDocument(ctx context.Context, userID int64) (types.DocumentHandle, error) {
	var doc types.DocumentHandle
	err := s.remote(ctx, userID, func(ctx context.Context) error {
		var err error
		doc, err = s.gw.EnsureDocument(ctx, userID)
		return err
	})
	if err != nil {
		return types.DocumentHandle{}, err
	}
	return doc, nil
}

// indexSheet returns the handle of the user's index worksheet.
func (s *Store) indexSheet(doc types.DocumentHandle) types.SheetHandle {
	return types.SheetHandle{Doc: doc, Title: types.IndexSheet}
}

// readSheet returns the sheet's data rows, serving a fresh cache snapshot
// when one exists and reading through the gateway otherwise.
func (s *Store) readSheet(ctx context.Context, sheet types.SheetHandle) ([][]string, error) {
	key := cache.Key{UserID: sheet.Doc.UserID, Sheet: sheet.Title}
	if rows, ok := s.cache.Get(key); ok {
		return rows, nil
	}

	var rows [][]string
	err := s.remote(ctx, sheet.Doc.UserID, func(ctx context.Context) error {
		var err error
		rows, err = s.gw.ReadRows(ctx, sheet)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(key, rows)
	return rows, nil
}

// readIndex reads and decodes the user's index sheet.
func (s *Store) readIndex(ctx context.Context, doc types.DocumentHandle) ([]types.GoalSummary, error) {
	rows, err := s.readSheet(ctx, s.indexSheet(doc))
	if err != nil {
		return nil, err
	}

	goals := make([]types.GoalSummary, 0, len(rows))
	for i, row := range rows {
		g, err := decodeIndexRow(row)
		if err != nil {
			s.log.Error("index row rejected", "user_id", doc.UserID, "row", i+firstDataRow, "error", err)
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// goalTasks reads and decodes one goal's task rows. A missing worksheet
// means the goal does not exist.
func (s *Store) goalTasks(ctx context.Context, doc types.DocumentHandle, goalID string) ([]types.Task, types.SheetHandle, error) {
	sheet := types.SheetHandle{Doc: doc, Title: types.GoalSheetTitle(goalID)}
	rows, err := s.readSheet(ctx, sheet)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, sheet, fmt.Errorf("goal %s: %w", goalID, types.ErrGoalNotFound)
		}
		return nil, sheet, err
	}

	tasks, err := decodeTasks(rows)
	if err != nil {
		s.log.Error("goal sheet rejected", "user_id", doc.UserID, "goal_id", goalID, "error", err)
		return nil, sheet, err
	}
	return tasks, sheet, nil
}

// goalCounts returns completed and total task counts for one goal.
func (s *Store) goalCounts(ctx context.Context, doc types.DocumentHandle, goalID string) (done, total int, err error) {
	tasks, _, err := s.goalTasks(ctx, doc, goalID)
	if err != nil {
		return 0, 0, err
	}
	for _, t := range tasks {
		if t.Status == types.TaskDone {
			done++
		}
	}
	return done, len(tasks), nil
}

// remote wraps one idempotent gateway call: limiter gate first, retry
// with backoff around the whole gated attempt.
func (s *Store) remote(ctx context.Context, userID int64, op retry.Operation) error {
	return s.exec.Do(ctx, func(ctx context.Context) error {
		if !s.limiter.Allow(userID) {
			s.log.Debug("rate limit denial", "user_id", userID)
			return errRateLimited
		}
		return op(ctx)
	})
}

// remoteOnce acquires a rate slot with backoff, then issues the call
// exactly once. Used for appends, whose replay after an ambiguous
// failure could not be told apart from a fresh append.
func (s *Store) remoteOnce(ctx context.Context, userID int64, op retry.Operation) error {
	err := s.exec.Do(ctx, func(ctx context.Context) error {
		if !s.limiter.Allow(userID) {
			s.log.Debug("rate limit denial", "user_id", userID)
			return errRateLimited
		}
		return nil
	})
	if err != nil {
		return err
	}
	return op(ctx)
}

// userLock returns the per-user mutex, creating it on first use.
func (s *Store) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.userMu[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userMu[userID] = mu
	}
	return mu
}

// plannedToTasks converts a generated plan into not-done tasks, rejecting
// duplicate dates up front rather than persisting an invalid sheet.
func plannedToTasks(plan []types.PlannedTask) ([]types.Task, error) {
	tasks := make([]types.Task, 0, len(plan))
	seen := make(map[string]bool, len(plan))
	for _, p := range plan {
		key := types.FormatDate(p.Date)
		if seen[key] {
			return nil, fmt.Errorf("plan repeats date %s: %w", key, types.ErrInvalidDate)
		}
		seen[key] = true
		tasks = append(tasks, types.Task{
			Date:        p.Date,
			Weekday:     types.Weekday(p.Date),
			Description: p.Description,
			Status:      types.TaskNotDone,
		})
	}
	return tasks, nil
}
