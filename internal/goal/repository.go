package goal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// StatusCounts holds all-time goal counts for a user.
type StatusCounts struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
}

// Summary is the projection used by the analytics goal-progress view.
type Summary struct {
	ID         string     `db:"id" json:"id"`
	Title      string     `db:"title" json:"title"`
	Category   string     `db:"category" json:"category,omitempty"`
	Status     Status     `db:"status" json:"status"`
	Progress   int        `db:"progress" json:"progress"`
	TargetDate *time.Time `db:"target_date" json:"targetDate,omitempty"`
}

// Repository defines operations for managing goals.
type Repository interface {
	Create(ctx context.Context, goal *Goal) error
	FindByID(ctx context.Context, userID, id string) (*Goal, error)
	List(ctx context.Context, userID string, status Status, limit, offset int) ([]Goal, error)
	Update(ctx context.Context, goal *Goal) error
	Delete(ctx context.Context, userID, id string) error
	SetMilestoneCompleted(ctx context.Context, milestoneID int64, completed bool, completedAt *time.Time) error
	AppendProgressLog(ctx context.Context, log *ProgressLog) error
	SetProgress(ctx context.Context, userID, id string, progress int, status Status, completedAt *time.Time) error
	CountByStatus(ctx context.Context, userID string) (StatusCounts, error)
	RecentSummaries(ctx context.Context, userID string, limit int) ([]Summary, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db sqlx.ExtContext) *DBRepository {
	return &DBRepository{db: db}
}

// Create inserts a goal with its milestones.
func (r *DBRepository) Create(ctx context.Context, goal *Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, description, category, priority, status, target_date, progress, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Category,
		goal.Priority, goal.Status, goal.TargetDate, goal.Progress, goal.Tags)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	for i := range goal.Milestones {
		milestone := &goal.Milestones[i]
		milestone.GoalID = goal.ID
		milestone.SortOrder = i
		result, err := r.db.ExecContext(ctx,
			"INSERT INTO goal_milestones (goal_id, title, completed, sort_order) VALUES (?, ?, ?, ?)",
			milestone.GoalID, milestone.Title, milestone.Completed, milestone.SortOrder)
		if err != nil {
			return fmt.Errorf("insert goal milestone: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("milestone last insert id: %w", err)
		}
		milestone.ID = id
	}
	return nil
}

// FindByID returns a goal with its milestones and progress logs, or nil if
// not found.
func (r *DBRepository) FindByID(ctx context.Context, userID, id string) (*Goal, error) {
	var goal Goal
	err := sqlx.GetContext(ctx, r.db, &goal,
		"SELECT * FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select goal: %w", err)
	}

	if err := r.loadChildren(ctx, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// List returns goals ordered by last update, optionally filtered by status.
func (r *DBRepository) List(ctx context.Context, userID string, status Status, limit, offset int) ([]Goal, error) {
	query := "SELECT * FROM goals WHERE user_id = ?"
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY updated_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var goals []Goal
	if err := sqlx.SelectContext(ctx, r.db, &goals, query, args...); err != nil {
		return nil, fmt.Errorf("select goals: %w", err)
	}

	for i := range goals {
		if err := r.loadChildren(ctx, &goals[i]); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

func (r *DBRepository) loadChildren(ctx context.Context, goal *Goal) error {
	if err := sqlx.SelectContext(ctx, r.db, &goal.Milestones,
		"SELECT * FROM goal_milestones WHERE goal_id = ? ORDER BY sort_order",
		goal.ID); err != nil {
		return fmt.Errorf("select goal milestones: %w", err)
	}
	if err := sqlx.SelectContext(ctx, r.db, &goal.ProgressLogs,
		"SELECT * FROM goal_progress_logs WHERE goal_id = ? ORDER BY date",
		goal.ID); err != nil {
		return fmt.Errorf("select goal progress logs: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a goal.
func (r *DBRepository) Update(ctx context.Context, goal *Goal) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE goals SET title = ?, description = ?, category = ?, priority = ?, status = ?, target_date = ?, completed_at = ?, tags = ?
		WHERE id = ? AND user_id = ?`,
		goal.Title, goal.Description, goal.Category, goal.Priority, goal.Status,
		goal.TargetDate, goal.CompletedAt, goal.Tags, goal.ID, goal.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

// Delete removes a goal; milestones and logs cascade.
func (r *DBRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMilestoneCompleted flips one milestone's completion flag.
func (r *DBRepository) SetMilestoneCompleted(ctx context.Context, milestoneID int64, completed bool, completedAt *time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE goal_milestones SET completed = ?, completed_at = ? WHERE id = ?",
		completed, completedAt, milestoneID); err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}
	return nil
}

// AppendProgressLog appends one progress entry.
func (r *DBRepository) AppendProgressLog(ctx context.Context, log *ProgressLog) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO goal_progress_logs (goal_id, date, description, time_spent, progress_before, progress_after, mood)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.GoalID, log.Date, log.Description, log.TimeSpent,
		log.ProgressBefore, log.ProgressAfter, log.Mood)
	if err != nil {
		return fmt.Errorf("insert progress log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("progress log last insert id: %w", err)
	}
	log.ID = id
	return nil
}

// SetProgress writes a goal's progress, status and completion time.
func (r *DBRepository) SetProgress(ctx context.Context, userID, id string, progress int, status Status, completedAt *time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE goals SET progress = ?, status = ?, completed_at = ? WHERE id = ? AND user_id = ?",
		progress, status, completedAt, id, userID); err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	return nil
}

// CountByStatus returns all-time total and completed goal counts.
func (r *DBRepository) CountByStatus(ctx context.Context, userID string) (StatusCounts, error) {
	var counts StatusCounts
	if err := sqlx.GetContext(ctx, r.db, &counts,
		`SELECT COUNT(*) AS total,
			COALESCE(SUM(status = 'completed'), 0) AS completed
		FROM goals WHERE user_id = ?`,
		userID); err != nil {
		return StatusCounts{}, fmt.Errorf("count goals: %w", err)
	}
	return counts, nil
}

// RecentSummaries returns the most recently updated active or completed
// goals, projected to the analytics summary shape.
func (r *DBRepository) RecentSummaries(ctx context.Context, userID string, limit int) ([]Summary, error) {
	var summaries []Summary
	if err := sqlx.SelectContext(ctx, r.db, &summaries,
		`SELECT id, title, category, status, progress, target_date
		FROM goals
		WHERE user_id = ? AND status IN ('active', 'completed')
		ORDER BY updated_at DESC
		LIMIT ?`,
		userID, limit); err != nil {
		return nil, fmt.Errorf("select goal summaries: %w", err)
	}
	return summaries, nil
}
