package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"aiwriter/internal/repositories"
	"aiwriter/internal/services"
)

// jsonErrorResponse encodes a structured error payload for clients.
type jsonErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// resultResponse is the body of update and apply responses.
type resultResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WriteJSONError writes an error response encoded as JSON with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	payload := jsonErrorResponse{
		Error: strings.TrimSpace(message),
	}
	if detail := strings.TrimSpace(details); detail != "" {
		payload.Details = detail
	}
	writeJSON(w, status, payload)
}

// writeResult writes a {success, error} body; failures carry the status of err.
func writeResult(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, resultResponse{Success: true})
		return
	}
	writeJSON(w, statusFor(err), resultResponse{Success: false, Error: services.UserMessage(err)})
}

func writeServiceError(w http.ResponseWriter, err error) {
	WriteJSONError(w, statusFor(err), services.UserMessage(err), "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrPromptRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repositories.ErrDraftNotFound),
		errors.Is(err, repositories.ErrIssueNotFound),
		errors.Is(err, repositories.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrDraftApplied):
		return http.StatusConflict
	case errors.Is(err, services.ErrEmptyCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
