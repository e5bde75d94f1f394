package goal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mshibata/studyledger/internal/database"
)

// Service coordinates goal mutations. Progress is driven by one of two
// paths: milestone-ratio recomputation or explicit progress-log entries;
// whichever path ran last wins.
type Service struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewService creates a new Service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// CreateParams are the inputs for creating a goal.
type CreateParams struct {
	Title       string
	Description string
	Category    string
	Priority    string
	TargetDate  *time.Time
	Milestones  []string
	Tags        []string
}

// Create inserts a new active goal with its milestones.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Goal, error) {
	goal := &Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Priority:    params.Priority,
		Status:      StatusActive,
		TargetDate:  params.TargetDate,
		Tags:        params.Tags,
	}
	if goal.Priority == "" {
		goal.Priority = "Medium"
	}
	for _, title := range params.Milestones {
		goal.Milestones = append(goal.Milestones, Milestone{Title: title})
	}

	if err := NewDBRepository(s.db).Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Get returns a goal with its milestones and progress logs.
func (s *Service) Get(ctx context.Context, userID, id string) (*Goal, error) {
	goal, err := NewDBRepository(s.db).FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNotFound
	}
	return goal, nil
}

// List returns goals ordered by last update, optionally filtered by status.
func (s *Service) List(ctx context.Context, userID string, status Status, limit, offset int) ([]Goal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return NewDBRepository(s.db).List(ctx, userID, status, limit, offset)
}

// UpdateParams are the editable fields of a goal.
type UpdateParams struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Status      Status
	TargetDate  *time.Time
	Tags        []string
}

// Update edits a goal's descriptive fields and status. The completed status
// is terminal: a completed goal cannot move back to any other status.
func (s *Service) Update(ctx context.Context, userID, id string, params UpdateParams) (*Goal, error) {
	repo := NewDBRepository(s.db)
	goal, err := repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNotFound
	}

	goal.Title = params.Title
	goal.Description = params.Description
	goal.Category = params.Category
	goal.Priority = params.Priority
	if params.Status != "" && params.Status != goal.Status {
		if goal.Status == StatusCompleted {
			return nil, ErrCompleted
		}
		goal.Status = params.Status
		if params.Status == StatusCompleted {
			now := s.now().UTC().Truncate(time.Second)
			goal.CompletedAt = &now
		}
	}
	goal.TargetDate = params.TargetDate
	goal.Tags = params.Tags

	if err := repo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := NewDBRepository(s.db).Delete(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ToggleMilestone marks one milestone completed or not and recomputes the
// goal's progress from the milestone ratio. Reaching 100 while active
// auto-completes the goal.
func (s *Service) ToggleMilestone(ctx context.Context, userID, id string, index int, completed bool) (*Goal, error) {
	var goal *Goal
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repo := NewDBRepository(tx)
		current, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		if index < 0 || index >= len(current.Milestones) {
			return ErrMilestoneIndex
		}

		milestone := &current.Milestones[index]
		milestone.Completed = completed
		milestone.CompletedAt = nil
		if completed {
			now := s.now().UTC().Truncate(time.Second)
			milestone.CompletedAt = &now
		}
		if err := repo.SetMilestoneCompleted(ctx, milestone.ID, milestone.Completed, milestone.CompletedAt); err != nil {
			return err
		}

		s.applyProgress(current, MilestoneProgress(current.Milestones))
		if err := repo.SetProgress(ctx, userID, id, current.Progress, current.Status, current.CompletedAt); err != nil {
			return err
		}
		goal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// ProgressLogParams are the inputs for an explicit progress entry.
type ProgressLogParams struct {
	Description string
	TimeSpent   int
	NewProgress *int
	Mood        string
}

// AddProgressLog appends a progress entry and, when NewProgress is given,
// moves the goal's progress to it. Completed goals reject further progress.
func (s *Service) AddProgressLog(ctx context.Context, userID, id string, params ProgressLogParams) (*Goal, error) {
	var goal *Goal
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		repo := NewDBRepository(tx)
		current, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNotFound
		}
		if current.Status == StatusCompleted {
			return ErrCompleted
		}

		progressAfter := current.Progress
		if params.NewProgress != nil {
			progressAfter = clampProgress(*params.NewProgress)
		}

		log := &ProgressLog{
			GoalID:         current.ID,
			Date:           s.now().UTC().Truncate(time.Second),
			Description:    params.Description,
			TimeSpent:      params.TimeSpent,
			ProgressBefore: current.Progress,
			ProgressAfter:  progressAfter,
			Mood:           params.Mood,
		}
		if err := repo.AppendProgressLog(ctx, log); err != nil {
			return err
		}
		current.ProgressLogs = append(current.ProgressLogs, *log)

		s.applyProgress(current, progressAfter)
		if err := repo.SetProgress(ctx, userID, id, current.Progress, current.Status, current.CompletedAt); err != nil {
			return err
		}
		goal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// applyProgress sets a goal's progress and performs the one-way
// auto-transition to completed when an active goal reaches 100.
func (s *Service) applyProgress(goal *Goal, progress int) {
	goal.Progress = clampProgress(progress)
	if goal.Progress >= 100 && goal.Status == StatusActive {
		goal.Status = StatusCompleted
		now := s.now().UTC().Truncate(time.Second)
		goal.CompletedAt = &now
	}
}

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
