// Package goal provides the long-term goal ledger.
package goal

import (
	"errors"
	"math"
	"time"

	"github.com/mshibata/studyledger/internal/database"
)

var (
	// ErrNotFound is returned when a goal does not exist or is owned by
	// another user.
	ErrNotFound = errors.New("goal not found")
	// ErrCompleted is returned when progress is added to a completed goal.
	ErrCompleted = errors.New("goal is already completed")
	// ErrMilestoneIndex is returned for an out-of-range milestone index.
	ErrMilestoneIndex = errors.New("milestone index out of range")
)

// Status is the lifecycle state of a goal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

// Tags is a JSON-encoded string list column.
type Tags = database.StringList

// Goal represents a long-term goal with milestones and a progress log.
type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"-"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description,omitempty"`
	Category    string     `db:"category" json:"category,omitempty"`
	Priority    string     `db:"priority" json:"priority"`
	Status      Status     `db:"status" json:"status"`
	TargetDate  *time.Time `db:"target_date" json:"targetDate,omitempty"`
	Progress    int        `db:"progress" json:"progress"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	Tags        Tags       `db:"tags" json:"tags,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`

	Milestones   []Milestone   `db:"-" json:"milestones"`
	ProgressLogs []ProgressLog `db:"-" json:"progressLogs"`
}

// Milestone is one ordered step of a goal.
type Milestone struct {
	ID          int64      `db:"id" json:"-"`
	GoalID      string     `db:"goal_id" json:"-"`
	Title       string     `db:"title" json:"title"`
	Completed   bool       `db:"completed" json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	SortOrder   int        `db:"sort_order" json:"-"`
}

// ProgressLog is one append-only progress entry.
type ProgressLog struct {
	ID             int64     `db:"id" json:"-"`
	GoalID         string    `db:"goal_id" json:"-"`
	Date           time.Time `db:"date" json:"date"`
	Description    string    `db:"description" json:"description"`
	TimeSpent      int       `db:"time_spent" json:"timeSpent,omitempty"`
	ProgressBefore int       `db:"progress_before" json:"progressBefore"`
	ProgressAfter  int       `db:"progress_after" json:"progressAfter"`
	Mood           string    `db:"mood" json:"mood,omitempty"`
}

// MilestoneProgress is the milestone-ratio progress of a goal as a
// percentage. A goal with no milestones reports 0.
func MilestoneProgress(milestones []Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	completed := 0
	for _, m := range milestones {
		if m.Completed {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(milestones)) * 100))
}
