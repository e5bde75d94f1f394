package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mshibata/studyledger/internal/goal"
)

type goalRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Category    string   `json:"category" validate:"omitempty,max=100"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status      string   `json:"status" validate:"omitempty,oneof=active completed paused cancelled"`
	TargetDate  string   `json:"targetDate" validate:"omitempty"`
	Milestones  []string `json:"milestones" validate:"omitempty,dive,required,max=255"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
}

func parseTargetDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}
	targetDate, err := parseTargetDate(req.TargetDate)
	if err != nil {
		writeValidationError(w, map[string]string{"targetDate": "must be a date in YYYY-MM-DD format"})
		return
	}

	created, err := h.goals.Create(r.Context(), userID(r), goal.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		TargetDate:  targetDate,
		Milestones:  req.Milestones,
		Tags:        req.Tags,
	})
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := goal.Status(query.Get("status"))
	if status != "" && !status.Valid() {
		writeValidationError(w, map[string]string{"status": "must be one of active, completed, paused, cancelled"})
		return
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	goals, err := h.goals.List(r.Context(), userID(r), status, limit, offset)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request) {
	found, err := h.goals.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		h.writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}
	targetDate, err := parseTargetDate(req.TargetDate)
	if err != nil {
		writeValidationError(w, map[string]string{"targetDate": "must be a date in YYYY-MM-DD format"})
		return
	}

	updated, err := h.goals.Update(r.Context(), userID(r), r.PathValue("id"), goal.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      goal.Status(req.Status),
		TargetDate:  targetDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.goals.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		h.writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type progressLogRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
	TimeSpent   int    `json:"timeSpent" validate:"omitempty,gte=0"`
	NewProgress *int   `json:"newProgress" validate:"omitempty,gte=0,lte=100"`
	Mood        string `json:"mood" validate:"omitempty,max=20"`
}

func (h *Handler) addGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req progressLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	updated, err := h.goals.AddProgressLog(r.Context(), userID(r), r.PathValue("id"), goal.ProgressLogParams{
		Description: req.Description,
		TimeSpent:   req.TimeSpent,
		NewProgress: req.NewProgress,
		Mood:        req.Mood,
	})
	if err != nil {
		h.writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type toggleMilestoneRequest struct {
	Completed bool `json:"completed"`
}

func (h *Handler) toggleGoalMilestone(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeValidationError(w, map[string]string{"index": "must be a milestone index"})
		return
	}

	req := toggleMilestoneRequest{Completed: true}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
			return
		}
	}

	updated, err := h.goals.ToggleMilestone(r.Context(), userID(r), r.PathValue("id"), index, req.Completed)
	if err != nil {
		h.writeGoalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeGoalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, goal.ErrNotFound):
		writeNotFound(w, "goal")
	case errors.Is(err, goal.ErrCompleted):
		writeError(w, http.StatusBadRequest, "goal_completed", "completed goals cannot accept further changes")
	case errors.Is(err, goal.ErrMilestoneIndex):
		writeError(w, http.StatusBadRequest, "milestone_index", "milestone index out of range")
	default:
		writeInternalError(w, err)
	}
}
