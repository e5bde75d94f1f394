// Package rollup maintains the per-user per-day study aggregates.
package rollup

import "time"

// DailyRollup is the aggregate record for all of a user's study activity on
// a single calendar day. At most one exists per (user, day).
type DailyRollup struct {
	ID                int64     `db:"id" json:"-"`
	UserID            string    `db:"user_id" json:"-"`
	Date              time.Time `db:"date" json:"date"`
	TotalStudyTime    int       `db:"total_study_time" json:"totalStudyTime"`
	TasksCompleted    int       `db:"tasks_completed" json:"tasksCompleted"`
	TasksPlanned      int       `db:"tasks_planned" json:"tasksPlanned"`
	ProductivityScore int       `db:"productivity_score" json:"productivityScore"`
	StreakCount       int       `db:"streak_count" json:"streakCount"`
	CreatedAt         time.Time `db:"created_at" json:"-"`
	UpdatedAt         time.Time `db:"updated_at" json:"-"`

	// SubjectBreakdown holds the per-subject time rows for the day. Loaded
	// by the completion cascade, not by the plain row queries.
	SubjectBreakdown []SubjectTime `db:"-" json:"subjectBreakdown,omitempty"`
}

// SubjectTime is the accumulated study time for one subject.
type SubjectTime struct {
	Subject   string `db:"subject" json:"subject"`
	TimeSpent int    `db:"time_spent" json:"timeSpent"`
}

// RangeTotals aggregates rollups over a date range.
type RangeTotals struct {
	TotalStudyTime int `db:"total_study_time"`
	TasksCompleted int `db:"tasks_completed"`
	BestStreak     int `db:"best_streak"`
}
