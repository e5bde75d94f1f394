// Package session provides the append-only study session ledger.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mshibata/studyledger/internal/rollup"
)

// Session records one completed study session. Sessions are created exactly
// once, at task completion, and never updated.
type Session struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"-"`
	TaskID          string    `db:"task_id" json:"taskId"`
	Subject         string    `db:"subject" json:"subject"`
	StartTime       time.Time `db:"start_time" json:"startTime"`
	EndTime         time.Time `db:"end_time" json:"endTime"`
	Duration        int       `db:"duration" json:"duration"`
	PlannedDuration int       `db:"planned_duration" json:"plannedDuration"`
	Efficiency      int       `db:"efficiency" json:"efficiency"`
	FocusRating     *int      `db:"focus_rating" json:"focusRating,omitempty"`
	Notes           string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// New builds the session produced by completing a task. The start time is
// back-dated by the actual duration and the efficiency is computed here,
// once, and frozen.
func New(userID, taskID, subject string, plannedDuration, actualDuration int, completedAt time.Time, focusRating *int, notes string) *Session {
	return &Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		TaskID:          taskID,
		Subject:         subject,
		StartTime:       completedAt.Add(-time.Duration(actualDuration) * time.Minute),
		EndTime:         completedAt,
		Duration:        actualDuration,
		PlannedDuration: plannedDuration,
		Efficiency:      rollup.Efficiency(plannedDuration, actualDuration),
		FocusRating:     focusRating,
		Notes:           notes,
	}
}
