package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// PlanRepo defines the persistence operations for a trip's day plans.
// Day plans are only ever written as a complete set — ReplaceForTrip is the
// single write path, and it is all-or-nothing.
type PlanRepo interface {
	// ListByTripID returns the trip's day plans in day-number order, each with
	// its planned activities in order-index order. Empty days are included.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DayPlan, error)

	// ReplaceForTrip deletes the trip's existing day plans and planned
	// activities and writes the new plan, all inside one transaction. When
	// interests is non-nil the trip's interest string is updated in the same
	// transaction. Any failure rolls back everything — the old plan survives
	// intact.
	ReplaceForTrip(ctx context.Context, tripID uuid.UUID, interests *string, plan domain.ItineraryPlan) error
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db txdb
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx — the inner Begin
// opens a savepoint, so rollback isolation still works.
func NewPlanRepo(db txdb) PlanRepo {
	return &pgPlanRepo{db: db}
}

// ListByTripID loads day plans and their activities with two queries and
// stitches them together in memory. Two flat scans beat one LEFT JOIN here:
// empty days would otherwise force every activity column to be nullable.
func (r *pgPlanRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DayPlan, error) {
	const daysQ = `
		SELECT id, trip_id, day_number, created_at
		FROM day_plans
		WHERE trip_id = @trip_id
		ORDER BY day_number`

	rows, err := r.db.Query(ctx, daysQ, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	days := []domain.DayPlan{}
	index := map[uuid.UUID]int{} // day plan id -> position in days
	for rows.Next() {
		var (
			dp  domain.DayPlan
			id  pgtype.UUID
			tid pgtype.UUID
		)
		if err := rows.Scan(&id, &tid, &dp.DayNumber, &dp.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: scan day: %w", err)
		}
		dp.ID = uuid.UUID(id.Bytes)
		dp.TripID = uuid.UUID(tid.Bytes)
		dp.Activities = []domain.PlannedActivity{}
		index[dp.ID] = len(days)
		days = append(days, dp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: rows: %w", err)
	}

	const actsQ = `
		SELECT pa.id, pa.day_plan_id, pa.order_index,
		       a.id, a.destination, a.name, a.category, a.duration_hours,
		       a.price_level, a.lat, a.lon, a.created_at, a.updated_at
		FROM planned_activities pa
		JOIN day_plans dp ON dp.id = pa.day_plan_id
		JOIN activities a ON a.id = pa.activity_id
		WHERE dp.trip_id = @trip_id
		ORDER BY dp.day_number, pa.order_index`

	actRows, err := r.db.Query(ctx, actsQ, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: %w", err)
	}
	defer actRows.Close()

	for actRows.Next() {
		var (
			pa        domain.PlannedActivity
			paID      pgtype.UUID
			dayPlanID pgtype.UUID
			actID     pgtype.UUID
			lat       pgtype.Float8
			lon       pgtype.Float8
		)
		err := actRows.Scan(&paID, &dayPlanID, &pa.OrderIndex,
			&actID, &pa.Activity.Destination, &pa.Activity.Name, &pa.Activity.Category,
			&pa.Activity.DurationHours, &pa.Activity.PriceLevel, &lat, &lon,
			&pa.Activity.CreatedAt, &pa.Activity.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: scan activity: %w", err)
		}
		pa.ID = uuid.UUID(paID.Bytes)
		pa.DayPlanID = uuid.UUID(dayPlanID.Bytes)
		pa.Activity.ID = uuid.UUID(actID.Bytes)
		if lat.Valid {
			v := lat.Float64
			pa.Activity.Lat = &v
		}
		if lon.Valid {
			v := lon.Float64
			pa.Activity.Lon = &v
		}

		i, ok := index[pa.DayPlanID]
		if !ok {
			return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: orphan planned activity %s", pa.ID)
		}
		days[i].Activities = append(days[i].Activities, pa)
	}
	if err := actRows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByTripID: rows: %w", err)
	}

	return days, nil
}

// ReplaceForTrip swaps the trip's entire persisted plan in one transaction.
func (r *pgPlanRepo) ReplaceForTrip(ctx context.Context, tripID uuid.UUID, interests *string, plan domain.ItineraryPlan) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.ReplaceForTrip: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck — rollback after commit is a no-op

	if interests != nil {
		const q = `UPDATE trips SET interests = @interests, updated_at = now() WHERE id = @id`
		tag, err := tx.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "interests": *interests})
		if err != nil {
			return fmt.Errorf("repo.PlanRepo.ReplaceForTrip: update interests: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("repo.PlanRepo.ReplaceForTrip: %w", domain.ErrNotFound)
		}
	}

	// planned_activities rows go with their day plans via ON DELETE CASCADE.
	const del = `DELETE FROM day_plans WHERE trip_id = @trip_id`
	if _, err := tx.Exec(ctx, del, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.PlanRepo.ReplaceForTrip: delete old plan: %w", err)
	}

	if err := insertPlan(ctx, tx, tripID, plan); err != nil {
		return fmt.Errorf("repo.PlanRepo.ReplaceForTrip: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.PlanRepo.ReplaceForTrip: commit: %w", err)
	}
	return nil
}

// insertPlan writes one day_plans row per plan day (1-based day numbers) and
// one planned_activities row per placed activity, with contiguous 1-based
// order indexes preserving the planner's placement order.
// Runs inside the caller's transaction; shared by CreateWithPlan and
// ReplaceForTrip.
func insertPlan(ctx context.Context, q db, tripID uuid.UUID, plan domain.ItineraryPlan) error {
	const dayQ = `
		INSERT INTO day_plans (trip_id, day_number)
		VALUES (@trip_id, @day_number)
		RETURNING id`

	const actQ = `
		INSERT INTO planned_activities (day_plan_id, activity_id, order_index)
		VALUES (@day_plan_id, @activity_id, @order_index)`

	for d, day := range plan.Days {
		var dayPlanID pgtype.UUID
		row := q.QueryRow(ctx, dayQ, pgx.NamedArgs{"trip_id": tripID, "day_number": d + 1})
		if err := row.Scan(&dayPlanID); err != nil {
			return fmt.Errorf("insert day %d: %w", d+1, err)
		}

		for i, act := range day {
			_, err := q.Exec(ctx, actQ, pgx.NamedArgs{
				"day_plan_id": uuid.UUID(dayPlanID.Bytes),
				"activity_id": act.ID,
				"order_index": i + 1,
			})
			if err != nil {
				return fmt.Errorf("insert day %d activity %d: %w", d+1, i+1, err)
			}
		}
	}
	return nil
}
