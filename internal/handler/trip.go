package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/middleware"
)

// createTripRequest is the JSON body for POST /trips.
type createTripRequest struct {
	Destination   string `json:"destination"`
	DaysCount     int    `json:"days_count"`
	BudgetCeiling *int   `json:"budget_ceiling,omitempty"`
	Interests     string `json:"interests,omitempty"`
}

// regenerateRequest is the optional JSON body for POST /trips/{id}/regenerate.
// A nil Interests leaves the trip's stored interest string in effect.
type regenerateRequest struct {
	Interests *string `json:"interests,omitempty"`
}

// tripResponse wraps a trip with the planner's optional shortfall warning.
type tripResponse struct {
	domain.Trip
	Warning string `json:"warning,omitempty"`
}

// tripListResponse is the paginated body for GET /trips.
type tripListResponse struct {
	Data       []domain.Trip `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// CreateTrip handles POST /trips: generate the initial itinerary and persist
// trip plus plan atomically.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, r, domain.ErrForbidden)
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	trip, warning, err := s.trips.Create(r.Context(), domain.Trip{
		OwnerID:       callerID,
		Destination:   req.Destination,
		DaysCount:     req.DaysCount,
		BudgetCeiling: req.BudgetCeiling,
		Interests:     req.Interests,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, tripResponse{Trip: trip, Warning: warning})
}

// RegenerateTrip handles POST /trips/{id}/regenerate.
// Exactly one of two concurrent requests for the same trip wins; the loser
// gets 409 and may retry once the winner finishes or the lock TTL expires.
func (s *Server) RegenerateTrip(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid trip id")
		return
	}

	// The body is optional: an empty body means "reuse stored interests".
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}

	trip, warning, err := s.trips.Regenerate(r.Context(), id, callerID, req.Interests)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tripResponse{Trip: trip, Warning: warning})
}

// GetTrip handles GET /trips/{id}, returning the trip with its day plans.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id, callerID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, trip)
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, r, domain.ErrForbidden)
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	trips, total, err := s.trips.ListByOwner(r.Context(), callerID, params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tripListResponse{
		Data: trips,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// DeleteTrip handles DELETE /trips/{id}, cascading the trip's day plans.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid trip id")
		return
	}

	if err := s.trips.Delete(r.Context(), id, callerID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter, returning nil when the
// parameter is absent or malformed.
func queryInt(r *http.Request, key string) *int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
