package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines operations for the session ledger.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	FindByRange(ctx context.Context, userID string, from, to time.Time) ([]Session, error)
	AverageEfficiency(ctx context.Context, userID string, from, to time.Time) (float64, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db sqlx.ExtContext) *DBRepository {
	return &DBRepository{db: db}
}

// Create appends a session to the ledger.
func (r *DBRepository) Create(ctx context.Context, session *Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, task_id, subject, start_time, end_time, duration, planned_duration, efficiency, focus_rating, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.TaskID, session.Subject,
		session.StartTime, session.EndTime, session.Duration, session.PlannedDuration,
		session.Efficiency, session.FocusRating, session.Notes)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByRange returns sessions ending within [from, to], newest first.
func (r *DBRepository) FindByRange(ctx context.Context, userID string, from, to time.Time) ([]Session, error) {
	var sessions []Session
	if err := sqlx.SelectContext(ctx, r.db, &sessions,
		"SELECT * FROM sessions WHERE user_id = ? AND end_time BETWEEN ? AND ? ORDER BY end_time DESC",
		userID, from, to); err != nil {
		return nil, fmt.Errorf("select sessions by range: %w", err)
	}
	return sessions, nil
}

// AverageEfficiency returns the mean session efficiency over a range, or 0
// when there are no sessions.
func (r *DBRepository) AverageEfficiency(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	var avg float64
	if err := sqlx.GetContext(ctx, r.db, &avg,
		"SELECT COALESCE(AVG(efficiency), 0) FROM sessions WHERE user_id = ? AND end_time BETWEEN ? AND ?",
		userID, from, to); err != nil {
		return 0, fmt.Errorf("average session efficiency: %w", err)
	}
	return avg, nil
}
