// Package server provides the HTTP JSON API.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   "validation_failed",
		Message: "request body failed validation",
		Fields:  fields,
	})
}

// writeNotFound reports a missing entity without leaking whether it exists
// for another user.
func writeNotFound(w http.ResponseWriter, entity string) {
	writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("%s not found", entity))
}

func writeInternalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
