package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mshibata/studyledger/internal/task"
)

type createTaskRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Subject      string `json:"subject" validate:"required,max=100"`
	ScheduledFor string `json:"scheduledFor" validate:"required"`
	Duration     int    `json:"duration" validate:"required"`
	Priority     string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
}

func checkDuration(duration int) map[string]string {
	if duration < task.MinDuration {
		return map[string]string{
			"duration": fmt.Sprintf("must be at least %d minutes", task.MinDuration),
		}
	}
	return nil
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}
	if fields := checkDuration(req.Duration); fields != nil {
		writeValidationError(w, fields)
		return
	}
	scheduledFor, err := time.Parse(time.DateOnly, req.ScheduledFor)
	if err != nil {
		writeValidationError(w, map[string]string{"scheduledFor": "must be a date in YYYY-MM-DD format"})
		return
	}
	priority := task.Priority(req.Priority)
	if priority == "" {
		priority = task.PriorityMedium
	}

	created, err := h.tasks.Create(r.Context(), userID(r), task.CreateParams{
		Title:        req.Title,
		Subject:      req.Subject,
		ScheduledFor: scheduledFor,
		Duration:     req.Duration,
		Priority:     priority,
	})
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeValidationError(w, map[string]string{"date": "must be a date in YYYY-MM-DD format"})
			return
		}
		day = parsed
	}

	summary, err := h.tasks.ListForDay(r.Context(), userID(r), day)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	found, err := h.tasks.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeNotFound(w, "task")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

type updateTaskRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Subject      string `json:"subject" validate:"required,max=100"`
	ScheduledFor string `json:"scheduledFor" validate:"required"`
	Duration     int    `json:"duration" validate:"required"`
	Priority     string `json:"priority" validate:"required,oneof=Low Medium High"`
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}
	if fields := checkDuration(req.Duration); fields != nil {
		writeValidationError(w, fields)
		return
	}
	scheduledFor, err := time.Parse(time.DateOnly, req.ScheduledFor)
	if err != nil {
		writeValidationError(w, map[string]string{"scheduledFor": "must be a date in YYYY-MM-DD format"})
		return
	}

	updated, err := h.tasks.Update(r.Context(), userID(r), r.PathValue("id"), task.UpdateParams{
		Title:        req.Title,
		Subject:      req.Subject,
		ScheduledFor: scheduledFor,
		Duration:     req.Duration,
		Priority:     task.Priority(req.Priority),
	})
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type completeTaskRequest struct {
	ActualDuration *int   `json:"actualDuration" validate:"omitempty,gte=1"`
	FocusRating    *int   `json:"focusRating" validate:"omitempty,gte=1,lte=5"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	req := completeTaskRequest{}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
			return
		}
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	result, err := h.tasks.Complete(r.Context(), userID(r), r.PathValue("id"), task.CompleteParams{
		ActualDuration: req.ActualDuration,
		FocusRating:    req.FocusRating,
		Notes:          req.Notes,
	})
	if err != nil {
		h.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		writeNotFound(w, "task")
	case errors.Is(err, task.ErrCompleted):
		writeError(w, http.StatusBadRequest, "task_completed", "completed tasks cannot be modified")
	default:
		writeInternalError(w, err)
	}
}
