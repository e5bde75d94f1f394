package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations for managing tasks.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, userID, id string) (*Task, error)
	FindByDay(ctx context.Context, userID string, day time.Time) ([]Task, error)
	CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error)
	Update(ctx context.Context, task *Task) error
	MarkCompleted(ctx context.Context, userID, id string, completedAt time.Time, actualDuration int) error
	Delete(ctx context.Context, userID, id string) error
}

// DBRepository implements Repository using MySQL. It works over either a
// *sqlx.DB or a *sqlx.Tx so the completion cascade can run in a transaction.
type DBRepository struct {
	db sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db sqlx.ExtContext) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a new task.
func (r *DBRepository) Create(ctx context.Context, task *Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, subject, scheduled_for, duration, priority, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Subject, task.ScheduledFor,
		task.Duration, task.Priority, task.Status)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// FindByID returns the task owned by userID, or nil if not found.
func (r *DBRepository) FindByID(ctx context.Context, userID, id string) (*Task, error) {
	var task Task
	err := sqlx.GetContext(ctx, r.db, &task,
		"SELECT * FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &task, nil
}

// FindByDay returns all tasks scheduled for the given day, ordered by creation.
func (r *DBRepository) FindByDay(ctx context.Context, userID string, day time.Time) ([]Task, error) {
	var tasks []Task
	if err := sqlx.SelectContext(ctx, r.db, &tasks,
		"SELECT * FROM tasks WHERE user_id = ? AND scheduled_for = ? ORDER BY created_at",
		userID, day); err != nil {
		return nil, fmt.Errorf("select tasks by day: %w", err)
	}
	return tasks, nil
}

// CountScheduledOn returns the number of tasks scheduled for the given day.
func (r *DBRepository) CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count,
		"SELECT COUNT(*) FROM tasks WHERE user_id = ? AND scheduled_for = ?",
		userID, day); err != nil {
		return 0, fmt.Errorf("count scheduled tasks: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable fields of a pending task.
func (r *DBRepository) Update(ctx context.Context, task *Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, subject = ?, scheduled_for = ?, duration = ?, priority = ?
		WHERE id = ? AND user_id = ? AND status = ?`,
		task.Title, task.Subject, task.ScheduledFor, task.Duration, task.Priority,
		task.ID, task.UserID, StatusPending)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRowAffected(result)
}

// MarkCompleted transitions a pending task to completed. It fails with
// ErrCompleted semantics (zero rows) when the task was already completed.
func (r *DBRepository) MarkCompleted(ctx context.Context, userID, id string, completedAt time.Time, actualDuration int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ?, actual_duration = ?
		WHERE id = ? AND user_id = ? AND status = ?`,
		StatusCompleted, completedAt, actualDuration, id, userID, StatusPending)
	if err != nil {
		return fmt.Errorf("mark task completed: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a pending task.
func (r *DBRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = ? AND user_id = ? AND status = ?",
		id, userID, StatusPending)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
