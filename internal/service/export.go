package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/repo"
)

// ExportService assembles a flat per-activity export of one trip's itinerary.
type ExportService struct {
	trips repo.TripRepo
	plans repo.PlanRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, plans repo.PlanRepo) *ExportService {
	return &ExportService{trips: trips, plans: plans}
}

// Export returns one ExportRow per planned activity of the caller's trip,
// ordered by day number then order index. Days with no activities contribute
// one row with empty activity fields.
func (s *ExportService) Export(ctx context.Context, tripID, callerID uuid.UUID) ([]domain.ExportRow, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if trip.OwnerID != callerID {
		return nil, fmt.Errorf("service.ExportService.Export: %w", domain.ErrForbidden)
	}

	days, err := s.plans.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, day := range days {
		if len(day.Activities) == 0 {
			rows = append(rows, domain.ExportRow{DayNumber: day.DayNumber})
			continue
		}
		for _, pa := range day.Activities {
			rows = append(rows, domain.ExportRow{
				DayNumber:     day.DayNumber,
				OrderIndex:    pa.OrderIndex,
				ActivityName:  pa.Activity.Name,
				Category:      pa.Activity.Category,
				DurationHours: pa.Activity.DurationHours,
				PriceLevel:    pa.Activity.PriceLevel,
			})
		}
	}
	return rows, nil
}
