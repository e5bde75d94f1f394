package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mshibata/studyledger/internal/resource"
)

type resourceRequest struct {
	Title    string   `json:"title" validate:"required,max=255"`
	URL      string   `json:"url" validate:"omitempty,url,max=2048"`
	Category string   `json:"category" validate:"omitempty,max=100"`
	Tags     []string `json:"tags" validate:"omitempty,dive,max=50"`
	Favorite bool     `json:"favorite"`
	Archived bool     `json:"archived"`
}

func (h *Handler) createResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	created := &resource.Resource{
		ID:       uuid.NewString(),
		UserID:   userID(r),
		Title:    req.Title,
		URL:      req.URL,
		Category: req.Category,
		Tags:     req.Tags,
		Favorite: req.Favorite,
		Archived: req.Archived,
	}
	if err := h.resources.Create(r.Context(), created); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listResources(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	params := resource.SearchParams{
		Query:    query.Get("q"),
		Category: query.Get("category"),
		Archived: query.Get("archived") == "true",
		Limit:    limit,
		Offset:   offset,
	}
	if raw := query.Get("favorite"); raw != "" {
		favorite := raw == "true"
		params.Favorite = &favorite
	}

	resources, err := h.resources.Search(r.Context(), userID(r), params)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

func (h *Handler) getResource(w http.ResponseWriter, r *http.Request) {
	found, err := h.resources.FindByID(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if found == nil {
		writeNotFound(w, "resource")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *Handler) updateResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		return
	}
	if fields := h.validator.check(req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	updated := &resource.Resource{
		ID:       r.PathValue("id"),
		UserID:   userID(r),
		Title:    req.Title,
		URL:      req.URL,
		Category: req.Category,
		Tags:     req.Tags,
		Favorite: req.Favorite,
		Archived: req.Archived,
	}
	if err := h.resources.Update(r.Context(), updated); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, "resource")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.resources.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			writeNotFound(w, "resource")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
