// Package handler implements the HTTP handlers for the TripWeaver API.
// Handlers decode requests, call the service layer through small consumer-side
// interfaces, and map sentinel errors to HTTP statuses. Methods are split into
// domain-specific files (health.go, trip.go, etc.) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, string, error)
	Regenerate(ctx context.Context, tripID, callerID uuid.UUID, interestOverride *string) (domain.Trip, string, error)
	GetByID(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Delete(ctx context.Context, tripID, callerID uuid.UUID) error
}

// ActivityServicer defines the business operations the catalog handlers depend on.
type ActivityServicer interface {
	Create(ctx context.Context, act domain.Activity) (domain.Activity, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error)
	ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.Activity, int64, error)
	Update(ctx context.Context, act domain.Activity) (domain.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, tripID, callerID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the service dependencies for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	trips      TripServicer
	activities ActivityServicer
	export     ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, activities ActivityServicer, export ExportServicer) *Server {
	return &Server{trips: trips, activities: activities, export: export}
}

// Routes mounts all API endpoints. Everything except the health check sits
// behind the provided authentication middleware, which is expected to place
// the caller's user ID in the request context.
func (s *Server) Routes(authn func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Route("/activities", func(r chi.Router) {
			r.Post("/", s.CreateActivity)
			r.Get("/", s.ListActivities)
			r.Get("/{id}", s.GetActivity)
			r.Put("/{id}", s.UpdateActivity)
			r.Delete("/{id}", s.DeleteActivity)
		})

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)
			r.Get("/{id}", s.GetTrip)
			r.Delete("/{id}", s.DeleteTrip)
			r.Post("/{id}/regenerate", s.RegenerateTrip)
			r.Get("/{id}/export", s.ExportTrip)
		})
	})

	return r
}

// pathID parses the {id} URL parameter as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
