package handler

import (
	"encoding/json"
	"net/http"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// activityRequest is the JSON body for POST /activities and PUT /activities/{id}.
type activityRequest struct {
	Destination   string   `json:"destination"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	DurationHours float64  `json:"duration_hours"`
	PriceLevel    int      `json:"price_level"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
}

// activityListResponse is the paginated body for GET /activities.
type activityListResponse struct {
	Data       []domain.Activity `json:"data"`
	Pagination pagination        `json:"pagination"`
}

// CreateActivity handles POST /activities.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	created, err := s.activities.Create(r.Context(), requestToActivity(req))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetActivity handles GET /activities/{id}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid activity id")
		return
	}

	act, err := s.activities.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, act)
}

// ListActivities handles GET /activities.
// Supports ?destination= to filter and ?page=/?limit= for pagination.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	acts, total, err := s.activities.ListPaged(r.Context(), r.URL.Query().Get("destination"), params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, activityListResponse{
		Data: acts,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// UpdateActivity handles PUT /activities/{id}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid activity id")
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	act := requestToActivity(req)
	act.ID = id

	updated, err := s.activities.Update(r.Context(), act)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteActivity handles DELETE /activities/{id}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid activity id")
		return
	}

	if err := s.activities.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requestToActivity converts an activityRequest body into a domain.Activity.
func requestToActivity(req activityRequest) domain.Activity {
	return domain.Activity{
		Destination:   req.Destination,
		Name:          req.Name,
		Category:      req.Category,
		DurationHours: req.DurationHours,
		PriceLevel:    req.PriceLevel,
		Lat:           req.Lat,
		Lon:           req.Lon,
	}
}
