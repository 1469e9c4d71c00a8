package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as JSON with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// respondError maps a service error to the appropriate HTTP status.
// Unrecognized errors become a generic 500 — the real error is logged, never
// leaked to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{errorDetail{Code: "not_found", Message: "not found"}})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{Code: "validation_error", Message: validationMessage(err)}})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{errorDetail{Code: "forbidden", Message: "you do not own this resource"}})
	case errors.Is(err, domain.ErrRegenInProgress):
		respondJSON(w, http.StatusConflict, errorResponse{errorDetail{Code: "regeneration_in_progress", Message: "regeneration already in progress, retry later"}})
	case errors.Is(err, domain.ErrDuplicate):
		respondJSON(w, http.StatusConflict, errorResponse{errorDetail{Code: "duplicate", Message: "a resource with those identifying fields already exists"}})
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{Code: "internal", Message: "internal server error"}})
	}
}

// badRequest writes a 400 for requests rejected before reaching the service
// layer (malformed JSON, bad UUID in path).
func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{errorDetail{Code: "bad_request", Message: message}})
}

// validationMessage extracts the human-readable part from a wrapped
// domain.ErrValidation, e.g.
// "service.TripService.Create: validation error: destination is required"
// → "destination is required".
func validationMessage(err error) string {
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
