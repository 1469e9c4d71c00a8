// Package service contains the business logic for the TripWeaver API.
// Services validate inputs, enforce business rules, and orchestrate repo and
// planner calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/planner"
	"github.com/avelis/tripweaver/backend/internal/repo"
)

// regenLockTTL bounds how long a crashed or hung regeneration can block the
// next attempt. After this window the conditional acquire treats the lock as
// abandoned and reclaims it; no reaper process needed.
const regenLockTTL = 2 * time.Minute

// noActivitiesWarning is attached when a trip's destination has no catalog
// activities at all. The planner is not invoked in that case.
const noActivitiesWarning = "no activities found for destination"

// TripService implements the trip lifecycle: initial generation, reads,
// deletion, and the regeneration coordination protocol (lock acquire →
// allocate → atomic replace → lock release).
type TripService struct {
	trips      repo.TripRepo
	plans      repo.PlanRepo
	activities repo.ActivityRepo
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, plans repo.PlanRepo, activities repo.ActivityRepo) *TripService {
	return &TripService{trips: trips, plans: plans, activities: activities}
}

// Create validates the request, runs the planner over the destination's
// catalog, and persists trip plus complete plan in one transaction.
// The returned warning is empty unless the plan has a shortfall.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, string, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, "", err
	}
	trip.Destination = strings.TrimSpace(trip.Destination)

	plan, err := s.buildPlan(ctx, trip.Destination, trip.DaysCount, trip.Interests)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.trips.CreateWithPlan(ctx, trip, plan)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Create: %w", err)
	}

	created.Days, err = s.plans.ListByTripID(ctx, created.ID)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, plan.Warning, nil
}

// Regenerate re-runs allocation for an existing trip and atomically swaps its
// persisted plan.
//
// At most one regeneration per trip is ever in flight: acquisition is a single
// conditional write on the trip's lock-expiry field, and a losing request gets
// domain.ErrRegenInProgress back instead of queueing. The lock is cleared on
// every exit path; a failed release is only logged, because the TTL makes the
// lock self-expiring.
//
// A non-nil interestOverride must be non-empty; it takes precedence over the
// trip's stored interest string and is persisted inside the same transaction
// as the new plan.
func (s *TripService) Regenerate(ctx context.Context, tripID, callerID uuid.UUID, interestOverride *string) (domain.Trip, string, error) {
	if interestOverride != nil && strings.TrimSpace(*interestOverride) == "" {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w: interest override must not be empty", domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
	}
	if trip.OwnerID != callerID {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", domain.ErrForbidden)
	}

	acquired, err := s.trips.AcquireRegenLock(ctx, tripID, time.Now().Add(regenLockTTL))
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
	}
	if !acquired {
		// A zero-row CAS also happens when the trip was deleted between the
		// owner check and the acquire. Re-check so the caller sees 404 rather
		// than a conflict for a trip that no longer exists.
		if _, err := s.trips.GetByID(ctx, tripID); err != nil {
			return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
		}
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", domain.ErrRegenInProgress)
	}
	// Best-effort cleanup on every exit path, including planner or persistence
	// failures. WithoutCancel so a caller timeout cannot strand the lock until
	// its TTL.
	defer func() {
		if err := s.trips.ReleaseRegenLock(context.WithoutCancel(ctx), tripID); err != nil {
			slog.ErrorContext(ctx, "failed to release regeneration lock",
				"trip_id", tripID, "error", err)
		}
	}()

	interests := trip.Interests
	if interestOverride != nil {
		interests = *interestOverride
	}

	plan, err := s.buildPlan(ctx, trip.Destination, trip.DaysCount, interests)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
	}

	if err := s.plans.ReplaceForTrip(ctx, tripID, interestOverride, plan); err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
	}

	updated, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
	}
	updated.Days, err = s.plans.ListByTripID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", err)
	}
	return updated, plan.Warning, nil
}

// GetByID returns the caller's trip with its day plans attached.
func (s *TripService) GetByID(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	if trip.OwnerID != callerID {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", domain.ErrForbidden)
	}
	trip.Days, err = s.plans.ListByTripID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListByOwner returns one page of the caller's trips (without day plans).
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListByOwnerPaged(ctx, ownerID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListByOwner: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Delete removes the caller's trip, cascading its day plans.
func (s *TripService) Delete(ctx context.Context, tripID, callerID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if trip.OwnerID != callerID {
		return fmt.Errorf("service.TripService.Delete: %w", domain.ErrForbidden)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// buildPlan fetches the destination's catalog and runs the planner.
// An empty catalog short-circuits to an all-empty plan with a fixed warning —
// a normal business condition, not an error.
func (s *TripService) buildPlan(ctx context.Context, destination string, daysCount int, interests string) (domain.ItineraryPlan, error) {
	pool, err := s.activities.ListByDestination(ctx, strings.TrimSpace(destination))
	if err != nil {
		return domain.ItineraryPlan{}, err
	}
	if len(pool) == 0 {
		return domain.EmptyPlan(daysCount, noActivitiesWarning), nil
	}
	return planner.Allocate(pool, daysCount, domain.ParseInterests(interests))
}

// validateTrip enforces the business rules for new trips.
//   - Destination must be non-empty (whitespace-only is rejected).
//   - DaysCount must be positive.
//   - BudgetCeiling, if set, must be positive.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if trip.DaysCount < 1 {
		return fmt.Errorf("%w: days_count must be positive", domain.ErrValidation)
	}
	if trip.BudgetCeiling != nil && *trip.BudgetCeiling < 1 {
		return fmt.Errorf("%w: budget_ceiling must be positive", domain.ErrValidation)
	}
	return nil
}
