// Package task provides the study task ledger.
package task

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a task does not exist or is owned by
	// another user.
	ErrNotFound = errors.New("task not found")
	// ErrCompleted is returned when a mutation targets a completed task.
	// Completed tasks are immutable.
	ErrCompleted = errors.New("task is already completed")
)

// Priority is the scheduling priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Weight returns the multiplier used for priority-weighted study minutes.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityHigh:
		return 2.0
	case PriorityMedium:
		return 1.5
	default:
		return 1.0
	}
}

// Status is the lifecycle state of a task. The only transition is
// pending to completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// MinDuration is the smallest plannable task duration in minutes.
const MinDuration = 10

// Task represents a scheduled study task.
type Task struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"-"`
	Title          string     `db:"title" json:"title"`
	Subject        string     `db:"subject" json:"subject"`
	ScheduledFor   time.Time  `db:"scheduled_for" json:"scheduledFor"`
	Duration       int        `db:"duration" json:"duration"`
	Priority       Priority   `db:"priority" json:"priority"`
	Status         Status     `db:"status" json:"status"`
	CompletedAt    *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	ActualDuration *int       `db:"actual_duration" json:"actualDuration,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// DaySummary is the task list for a single day with its aggregate minutes.
type DaySummary struct {
	Date            time.Time `json:"date"`
	Tasks           []Task    `json:"tasks"`
	TotalMinutes    int       `json:"totalMinutes"`
	WeightedMinutes float64   `json:"weightedMinutes"`
}
