package rollup

import (
	"context"
	"fmt"
	"time"
)

// PlannedCounter counts the tasks scheduled for a day. Satisfied by the task
// repository.
type PlannedCounter interface {
	CountScheduledOn(ctx context.Context, userID string, day time.Time) (int, error)
}

// Updater keeps daily rollups consistent with the task and session ledgers.
// Construct it over transaction-scoped repositories when running inside the
// completion cascade.
type Updater struct {
	tasks         PlannedCounter
	rollups       Repository
	targetMinutes int
}

// NewUpdater creates a new Updater. targetMinutes <= 0 falls back to
// DefaultDailyTargetMinutes.
func NewUpdater(tasks PlannedCounter, rollups Repository, targetMinutes int) *Updater {
	if targetMinutes <= 0 {
		targetMinutes = DefaultDailyTargetMinutes
	}
	return &Updater{tasks: tasks, rollups: rollups, targetMinutes: targetMinutes}
}

// TaskScheduled recomputes the planned count for a day after a task is
// created or moved onto it, creating the rollup if absent. The count is
// always a full recount, never an increment, so repeated calls converge on
// the true value.
func (u *Updater) TaskScheduled(ctx context.Context, userID string, day time.Time) error {
	day = DayKey(day)
	planned, err := u.tasks.CountScheduledOn(ctx, userID, day)
	if err != nil {
		return err
	}
	return u.rollups.UpsertPlanned(ctx, userID, day, planned)
}

// TaskDeleted recomputes the planned count for a day after a task is removed
// from it. No rollup is created: deletion implies one may already exist, and
// an absent rollup has nothing to correct.
func (u *Updater) TaskDeleted(ctx context.Context, userID string, day time.Time) error {
	day = DayKey(day)
	planned, err := u.tasks.CountScheduledOn(ctx, userID, day)
	if err != nil {
		return err
	}
	return u.rollups.UpdatePlanned(ctx, userID, day, planned)
}

// RecordCompletion folds a completed task into the day's rollup: accumulates
// study time and the completion count, updates the subject breakdown,
// recounts planned tasks, and recomputes the productivity score and streak.
// It returns the rollup as of this completion.
func (u *Updater) RecordCompletion(ctx context.Context, userID, subject string, plannedDuration, actualDuration int, completedAt time.Time) (*DailyRollup, error) {
	day := DayKey(completedAt)

	if err := u.rollups.ApplyCompletion(ctx, userID, day, actualDuration); err != nil {
		return nil, err
	}

	rollup, err := u.rollups.FindByDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if rollup == nil {
		return nil, fmt.Errorf("rollup missing after completion upsert for %s", day.Format("2006-01-02"))
	}

	if err := u.rollups.AddSubjectTime(ctx, rollup.ID, subject, actualDuration); err != nil {
		return nil, err
	}

	planned, err := u.tasks.CountScheduledOn(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	score := Score(ScoreInput{
		TasksCompleted:  rollup.TasksCompleted,
		TasksPlanned:    planned,
		PlannedDuration: plannedDuration,
		ActualDuration:  actualDuration,
		TotalStudyTime:  rollup.TotalStudyTime,
		TargetMinutes:   u.targetMinutes,
	})

	yesterday, err := u.rollups.FindByDay(ctx, userID, day.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	streak := Streak(yesterday)

	if err := u.rollups.UpdateDerived(ctx, userID, day, planned, score, streak); err != nil {
		return nil, err
	}

	breakdown, err := u.rollups.SubjectBreakdown(ctx, rollup.ID)
	if err != nil {
		return nil, err
	}

	rollup.TasksPlanned = planned
	rollup.ProductivityScore = score
	rollup.StreakCount = streak
	rollup.SubjectBreakdown = breakdown
	return rollup, nil
}
