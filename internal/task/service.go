package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mshibata/studyledger/internal/database"
	"github.com/mshibata/studyledger/internal/rollup"
	"github.com/mshibata/studyledger/internal/session"
)

// Service coordinates the task ledger with the session ledger and daily
// rollups. Multi-step operations run in a single transaction.
type Service struct {
	db            *sqlx.DB
	targetMinutes int
	now           func() time.Time
}

// NewService creates a new Service. targetMinutes is the daily study-time
// target used for productivity scoring.
func NewService(db *sqlx.DB, targetMinutes int) *Service {
	return &Service{
		db:            db,
		targetMinutes: targetMinutes,
		now:           time.Now,
	}
}

// CreateParams are the inputs for scheduling a task.
type CreateParams struct {
	Title        string
	Subject      string
	ScheduledFor time.Time
	Duration     int
	Priority     Priority
}

// CompleteParams are the optional inputs for completing a task.
type CompleteParams struct {
	ActualDuration *int
	FocusRating    *int
	Notes          string
}

// CompletionResult is everything produced by completing a task.
type CompletionResult struct {
	Task    *Task               `json:"task"`
	Session *session.Session    `json:"session"`
	Rollup  *rollup.DailyRollup `json:"rollup"`
}

// Create schedules a new task and refreshes the planned count on the day's
// rollup.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Task, error) {
	task := &Task{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        params.Title,
		Subject:      params.Subject,
		ScheduledFor: rollup.DayKey(params.ScheduledFor),
		Duration:     params.Duration,
		Priority:     params.Priority,
		Status:       StatusPending,
	}

	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := NewDBRepository(tx)
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		updater := rollup.NewUpdater(tasks, rollup.NewDBRepository(tx), s.targetMinutes)
		return updater.TaskScheduled(ctx, userID, task.ScheduledFor)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns a task by ID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Task, error) {
	task, err := NewDBRepository(s.db).FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// ListForDay returns the tasks scheduled for a day together with the total
// and priority-weighted minutes.
func (s *Service) ListForDay(ctx context.Context, userID string, day time.Time) (*DaySummary, error) {
	day = rollup.DayKey(day)
	tasks, err := NewDBRepository(s.db).FindByDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	summary := &DaySummary{Date: day, Tasks: tasks}
	for _, t := range tasks {
		summary.TotalMinutes += t.Duration
		summary.WeightedMinutes += float64(t.Duration) * t.Priority.Weight()
	}
	return summary, nil
}

// UpdateParams are the mutable fields of a pending task.
type UpdateParams struct {
	Title        string
	Subject      string
	ScheduledFor time.Time
	Duration     int
	Priority     Priority
}

// Update edits a pending task. Moving it to another day refreshes the
// planned counts of both days.
func (s *Service) Update(ctx context.Context, userID, id string, params UpdateParams) (*Task, error) {
	var updated *Task
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := NewDBRepository(tx)
		current, err := tasks.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		if current.Status == StatusCompleted {
			return ErrCompleted
		}

		previousDay := rollup.DayKey(current.ScheduledFor)
		current.Title = params.Title
		current.Subject = params.Subject
		current.ScheduledFor = rollup.DayKey(params.ScheduledFor)
		current.Duration = params.Duration
		current.Priority = params.Priority
		if err := tasks.Update(ctx, current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCompleted
			}
			return err
		}

		updater := rollup.NewUpdater(tasks, rollup.NewDBRepository(tx), s.targetMinutes)
		if err := updater.TaskScheduled(ctx, userID, current.ScheduledFor); err != nil {
			return err
		}
		if !previousDay.Equal(current.ScheduledFor) {
			if err := updater.TaskDeleted(ctx, userID, previousDay); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a pending task and refreshes the planned count on its day.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := NewDBRepository(tx)
		current, err := tasks.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		if current.Status == StatusCompleted {
			return ErrCompleted
		}
		if err := tasks.Delete(ctx, userID, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCompleted
			}
			return err
		}
		updater := rollup.NewUpdater(tasks, rollup.NewDBRepository(tx), s.targetMinutes)
		return updater.TaskDeleted(ctx, userID, rollup.DayKey(current.ScheduledFor))
	})
}

// Complete transitions a pending task to completed, appends the session it
// produced and folds it into the day's rollup, all in one transaction.
func (s *Service) Complete(ctx context.Context, userID, id string, params CompleteParams) (*CompletionResult, error) {
	var result CompletionResult
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		tasks := NewDBRepository(tx)
		current, err := tasks.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		if current.Status == StatusCompleted {
			return ErrCompleted
		}

		actualDuration := current.Duration
		if params.ActualDuration != nil {
			actualDuration = *params.ActualDuration
		}
		completedAt := s.now().UTC().Truncate(time.Second)

		if err := tasks.MarkCompleted(ctx, userID, id, completedAt, actualDuration); err != nil {
			// A zero-row guard failure here means another request completed
			// the task between our read and write.
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCompleted
			}
			return err
		}
		current.Status = StatusCompleted
		current.CompletedAt = &completedAt
		current.ActualDuration = &actualDuration

		newSession := session.New(userID, current.ID, current.Subject,
			current.Duration, actualDuration, completedAt, params.FocusRating, params.Notes)
		if err := session.NewDBRepository(tx).Create(ctx, newSession); err != nil {
			return err
		}

		updater := rollup.NewUpdater(tasks, rollup.NewDBRepository(tx), s.targetMinutes)
		updatedRollup, err := updater.RecordCompletion(ctx, userID, current.Subject,
			current.Duration, actualDuration, completedAt)
		if err != nil {
			return err
		}

		result = CompletionResult{Task: current, Session: newSession, Rollup: updatedRollup}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
