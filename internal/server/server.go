package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mshibata/studyledger/internal/analytics"
	"github.com/mshibata/studyledger/internal/goal"
	"github.com/mshibata/studyledger/internal/note"
	"github.com/mshibata/studyledger/internal/resource"
	"github.com/mshibata/studyledger/internal/task"
)

// TaskService is the task surface the handlers call.
type TaskService interface {
	Create(ctx context.Context, userID string, params task.CreateParams) (*task.Task, error)
	Get(ctx context.Context, userID, id string) (*task.Task, error)
	ListForDay(ctx context.Context, userID string, day time.Time) (*task.DaySummary, error)
	Update(ctx context.Context, userID, id string, params task.UpdateParams) (*task.Task, error)
	Delete(ctx context.Context, userID, id string) error
	Complete(ctx context.Context, userID, id string, params task.CompleteParams) (*task.CompletionResult, error)
}

// GoalService is the goal surface the handlers call.
type GoalService interface {
	Create(ctx context.Context, userID string, params goal.CreateParams) (*goal.Goal, error)
	Get(ctx context.Context, userID, id string) (*goal.Goal, error)
	List(ctx context.Context, userID string, status goal.Status, limit, offset int) ([]goal.Goal, error)
	Update(ctx context.Context, userID, id string, params goal.UpdateParams) (*goal.Goal, error)
	Delete(ctx context.Context, userID, id string) error
	ToggleMilestone(ctx context.Context, userID, id string, index int, completed bool) (*goal.Goal, error)
	AddProgressLog(ctx context.Context, userID, id string, params goal.ProgressLogParams) (*goal.Goal, error)
}

// AnalyticsService is the reporting surface the handlers call.
type AnalyticsService interface {
	GetReport(ctx context.Context, userID string, timeRange analytics.TimeRange) (*analytics.Report, error)
}

// Handler serves the JSON API.
type Handler struct {
	tasks     TaskService
	goals     GoalService
	notes     note.Repository
	resources resource.Repository
	analytics AnalyticsService
	validator *requestValidator
}

// New creates a Handler over the given services.
func New(tasks TaskService, goals GoalService, notes note.Repository, resources resource.Repository, analyticsService AnalyticsService) (*Handler, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("create request validator: %w", err)
	}
	return &Handler{
		tasks:     tasks,
		goals:     goals,
		notes:     notes,
		resources: resources,
		analytics: analyticsService,
		validator: validator,
	}, nil
}

// Routes returns the API route table. Authentication and logging middleware
// are applied by the caller.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /analytics", h.getAnalytics)

	mux.HandleFunc("POST /study-tasks", h.createTask)
	mux.HandleFunc("GET /study-tasks", h.listTasks)
	mux.HandleFunc("GET /study-tasks/{id}", h.getTask)
	mux.HandleFunc("PUT /study-tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /study-tasks/{id}", h.deleteTask)
	mux.HandleFunc("PATCH /study-tasks/{id}/complete", h.completeTask)

	mux.HandleFunc("POST /goals", h.createGoal)
	mux.HandleFunc("GET /goals", h.listGoals)
	mux.HandleFunc("GET /goals/{id}", h.getGoal)
	mux.HandleFunc("PUT /goals/{id}", h.updateGoal)
	mux.HandleFunc("DELETE /goals/{id}", h.deleteGoal)
	mux.HandleFunc("POST /goals/{id}/progress", h.addGoalProgress)
	mux.HandleFunc("PATCH /goals/{id}/milestones/{index}", h.toggleGoalMilestone)

	mux.HandleFunc("POST /notes", h.createNote)
	mux.HandleFunc("GET /notes", h.listNotes)
	mux.HandleFunc("GET /notes/{id}", h.getNote)
	mux.HandleFunc("PUT /notes/{id}", h.updateNote)
	mux.HandleFunc("DELETE /notes/{id}", h.deleteNote)

	mux.HandleFunc("POST /resources", h.createResource)
	mux.HandleFunc("GET /resources", h.listResources)
	mux.HandleFunc("GET /resources/{id}", h.getResource)
	mux.HandleFunc("PUT /resources/{id}", h.updateResource)
	mux.HandleFunc("DELETE /resources/{id}", h.deleteResource)

	return mux
}
