package rollup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations for managing daily rollups.
type Repository interface {
	FindByDay(ctx context.Context, userID string, day time.Time) (*DailyRollup, error)
	FindRange(ctx context.Context, userID string, from, to time.Time) ([]DailyRollup, error)
	SumRange(ctx context.Context, userID string, from, to time.Time) (RangeTotals, error)
	SubjectTotals(ctx context.Context, userID string, from, to time.Time, limit int) ([]SubjectTime, error)
	ApplyCompletion(ctx context.Context, userID string, day time.Time, minutes int) error
	AddSubjectTime(ctx context.Context, rollupID int64, subject string, minutes int) error
	SubjectBreakdown(ctx context.Context, rollupID int64) ([]SubjectTime, error)
	UpsertPlanned(ctx context.Context, userID string, day time.Time, planned int) error
	UpdatePlanned(ctx context.Context, userID string, day time.Time, planned int) error
	UpdateDerived(ctx context.Context, userID string, day time.Time, planned, score, streak int) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db sqlx.ExtContext) *DBRepository {
	return &DBRepository{db: db}
}

// FindByDay returns the rollup for the given day, or nil if none exists.
func (r *DBRepository) FindByDay(ctx context.Context, userID string, day time.Time) (*DailyRollup, error) {
	var rollup DailyRollup
	err := sqlx.GetContext(ctx, r.db, &rollup,
		"SELECT * FROM daily_rollups WHERE user_id = ? AND date = ?", userID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select rollup: %w", err)
	}
	return &rollup, nil
}

// FindRange returns rollups with from <= date <= to, ordered by date.
func (r *DBRepository) FindRange(ctx context.Context, userID string, from, to time.Time) ([]DailyRollup, error) {
	var rollups []DailyRollup
	if err := sqlx.SelectContext(ctx, r.db, &rollups,
		"SELECT * FROM daily_rollups WHERE user_id = ? AND date BETWEEN ? AND ? ORDER BY date",
		userID, from, to); err != nil {
		return nil, fmt.Errorf("select rollup range: %w", err)
	}
	return rollups, nil
}

// SumRange aggregates study time, completions and the best streak over a range.
func (r *DBRepository) SumRange(ctx context.Context, userID string, from, to time.Time) (RangeTotals, error) {
	var totals RangeTotals
	if err := sqlx.GetContext(ctx, r.db, &totals,
		`SELECT COALESCE(SUM(total_study_time), 0) AS total_study_time,
			COALESCE(SUM(tasks_completed), 0) AS tasks_completed,
			COALESCE(MAX(streak_count), 0) AS best_streak
		FROM daily_rollups WHERE user_id = ? AND date BETWEEN ? AND ?`,
		userID, from, to); err != nil {
		return RangeTotals{}, fmt.Errorf("sum rollup range: %w", err)
	}
	return totals, nil
}

// SubjectTotals flattens the subject breakdowns across a range, summed per
// subject and ordered by time spent descending.
func (r *DBRepository) SubjectTotals(ctx context.Context, userID string, from, to time.Time, limit int) ([]SubjectTime, error) {
	var subjects []SubjectTime
	if err := sqlx.SelectContext(ctx, r.db, &subjects,
		`SELECT s.subject AS subject, SUM(s.time_spent) AS time_spent
		FROM rollup_subjects s
		JOIN daily_rollups r ON r.id = s.rollup_id
		WHERE r.user_id = ? AND r.date BETWEEN ? AND ?
		GROUP BY s.subject
		ORDER BY time_spent DESC
		LIMIT ?`,
		userID, from, to, limit); err != nil {
		return nil, fmt.Errorf("sum subject totals: %w", err)
	}
	return subjects, nil
}

// ApplyCompletion adds one completion and its minutes to the day's rollup,
// creating the rollup if absent. The increment happens in the database so
// concurrent completions cannot lose updates.
func (r *DBRepository) ApplyCompletion(ctx context.Context, userID string, day time.Time, minutes int) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_rollups (user_id, date, total_study_time, tasks_completed)
		VALUES (?, ?, ?, 1)
		ON DUPLICATE KEY UPDATE
			total_study_time = total_study_time + VALUES(total_study_time),
			tasks_completed = tasks_completed + 1`,
		userID, day, minutes); err != nil {
		return fmt.Errorf("apply completion to rollup: %w", err)
	}
	return nil
}

// AddSubjectTime accumulates minutes onto the rollup's subject breakdown,
// keeping one row per distinct subject.
func (r *DBRepository) AddSubjectTime(ctx context.Context, rollupID int64, subject string, minutes int) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO rollup_subjects (rollup_id, subject, time_spent)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE time_spent = time_spent + VALUES(time_spent)`,
		rollupID, subject, minutes); err != nil {
		return fmt.Errorf("add subject time: %w", err)
	}
	return nil
}

// UpsertPlanned sets the day's planned-task count, creating the rollup with
// zero-value aggregates if absent.
func (r *DBRepository) UpsertPlanned(ctx context.Context, userID string, day time.Time, planned int) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_rollups (user_id, date, tasks_planned)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE tasks_planned = VALUES(tasks_planned)`,
		userID, day, planned); err != nil {
		return fmt.Errorf("upsert planned count: %w", err)
	}
	return nil
}

// UpdatePlanned sets the day's planned-task count only if a rollup already
// exists. Deleting a task never creates a rollup.
func (r *DBRepository) UpdatePlanned(ctx context.Context, userID string, day time.Time, planned int) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE daily_rollups SET tasks_planned = ? WHERE user_id = ? AND date = ?",
		planned, userID, day); err != nil {
		return fmt.Errorf("update planned count: %w", err)
	}
	return nil
}

// UpdateDerived writes the recomputed planned count, productivity score and
// streak for a day.
func (r *DBRepository) UpdateDerived(ctx context.Context, userID string, day time.Time, planned, score, streak int) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_rollups SET tasks_planned = ?, productivity_score = ?, streak_count = ?
		WHERE user_id = ? AND date = ?`,
		planned, score, streak, userID, day); err != nil {
		return fmt.Errorf("update derived rollup fields: %w", err)
	}
	return nil
}

// SubjectBreakdown returns the subject rows for a single rollup.
func (r *DBRepository) SubjectBreakdown(ctx context.Context, rollupID int64) ([]SubjectTime, error) {
	var subjects []SubjectTime
	if err := sqlx.SelectContext(ctx, r.db, &subjects,
		"SELECT subject, time_spent FROM rollup_subjects WHERE rollup_id = ? ORDER BY time_spent DESC",
		rollupID); err != nil {
		return nil, fmt.Errorf("select subject breakdown: %w", err)
	}
	return subjects, nil
}
