package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mshibata/studyledger/internal/note"
)

type noteRequest struct {
	Title    string   `json:"title" validate:"required,max=255"`
	Content  string   `json:"content" validate:"omitempty,max=100000"`
	Category string   `json:"category" validate:"omitempty,max=100"`
	Tags     []string `json:"tags" validate:"omitempty,dive,max=50"`
	Pinned   bool     `json:"pinned"`
	Archived bool     `json:"archived"`
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	created := &note.Note{
		ID:       uuid.NewString(),
		UserID:   userID(r),
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		Pinned:   req.Pinned,
		Archived: req.Archived,
	}
	if err := h.notes.Create(r.Context(), created); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	notes, err := h.notes.Search(r.Context(), userID(r), note.SearchParams{
		Query:    query.Get("q"),
		Category: query.Get("category"),
		Archived: query.Get("archived") == "true",
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	found, err := h.notes.FindByID(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if found == nil {
		writeNotFound(w, "note")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	updated := &note.Note{
		ID:       r.PathValue("id"),
		UserID:   userID(r),
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		Pinned:   req.Pinned,
		Archived: req.Archived,
	}
	if err := h.notes.Update(r.Context(), updated); err != nil {
		if errors.Is(err, note.ErrNotFound) {
			writeNotFound(w, "note")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		if errors.Is(err, note.ErrNotFound) {
			writeNotFound(w, "note")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
