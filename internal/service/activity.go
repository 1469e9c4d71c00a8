package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/repo"
)

// ActivityService implements business logic for the activity catalog.
// The catalog is plain CRUD; the interesting constraint is that every row it
// produces must be valid planner input (positive duration, price level 1-5).
type ActivityService struct {
	repo repo.ActivityRepo
}

// NewActivityService constructs an ActivityService backed by the provided repo.
func NewActivityService(r repo.ActivityRepo) *ActivityService {
	return &ActivityService{repo: r}
}

// Create validates and persists a new catalog activity.
// Returns domain.ErrDuplicate if (destination, name) is already taken.
func (s *ActivityService) Create(ctx context.Context, act domain.Activity) (domain.Activity, error) {
	if err := validateActivity(act); err != nil {
		return domain.Activity{}, err
	}
	result, err := s.repo.Create(ctx, act)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single activity by ID.
func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of the catalog, optionally filtered by destination.
func (s *ActivityService) ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.Activity, int64, error) {
	acts, total, err := s.repo.ListPaged(ctx, strings.TrimSpace(destination), p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ActivityService.ListPaged: %w", err)
	}
	return acts, total, nil
}

// Update validates and persists changes to an existing activity.
func (s *ActivityService) Update(ctx context.Context, act domain.Activity) (domain.Activity, error) {
	if err := validateActivity(act); err != nil {
		return domain.Activity{}, err
	}
	result, err := s.repo.Update(ctx, act)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	return result, nil
}

// Delete removes an activity by ID.
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	return nil
}

// validateActivity enforces business rules common to both Create and Update.
// Everything here exists to keep the catalog valid as planner input.
func validateActivity(act domain.Activity) error {
	if strings.TrimSpace(act.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if strings.TrimSpace(act.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(act.Category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if act.DurationHours <= 0 {
		return fmt.Errorf("%w: duration_hours must be positive", domain.ErrValidation)
	}
	if act.PriceLevel < 1 || act.PriceLevel > 5 {
		return fmt.Errorf("%w: price_level must be between 1 and 5", domain.ErrValidation)
	}
	if act.Lat != nil && (*act.Lat < -90 || *act.Lat > 90) {
		return fmt.Errorf("%w: lat must be between -90 and 90", domain.ErrValidation)
	}
	if act.Lon != nil && (*act.Lon < -180 || *act.Lon > 180) {
		return fmt.Errorf("%w: lon must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
