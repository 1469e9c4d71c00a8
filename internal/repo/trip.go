package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips, including the
// regeneration lock compare-and-set the coordinator relies on.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// CreateWithPlan inserts the trip and its complete day-plan set in one
	// transaction and returns the persisted trip. A trip is never observable
	// without its day plans, or with a partial set.
	CreateWithPlan(ctx context.Context, trip domain.Trip, plan domain.ItineraryPlan) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key (without day
	// plans — use PlanRepo.ListByTripID for those).
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByOwnerPaged returns one page of the owner's trips ordered by
	// created_at descending, plus the total count.
	ListByOwnerPaged(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Delete removes a trip by ID, cascading its day plans and planned
	// activities. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AcquireRegenLock performs the single atomic conditional write that
	// claims the regeneration lock: it sets regen_lock_until to the given
	// expiry only if the lock is currently absent or already expired.
	// Returns false (and no error) when the lock is held by someone else —
	// that is the losing side of the race, not a fault.
	AcquireRegenLock(ctx context.Context, id uuid.UUID, until time.Time) (bool, error)

	// ReleaseRegenLock unconditionally clears the lock field. Safe to call
	// whether or not the lock is held; releasing a deleted trip is a no-op.
	ReleaseRegenLock(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db txdb
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx — CreateWithPlan's
// inner Begin then opens a savepoint, so rollback isolation still works.
func NewTripRepo(db txdb) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_id, destination, days_count, budget_ceiling, interests, regen_lock_until, created_at, updated_at`

// CreateWithPlan inserts the trip row and its full plan atomically.
func (r *pgTripRepo) CreateWithPlan(ctx context.Context, trip domain.Trip, plan domain.ItineraryPlan) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.CreateWithPlan: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck — rollback after commit is a no-op

	const q = `
		INSERT INTO trips (owner_id, destination, days_count, budget_ceiling, interests)
		VALUES (@owner_id, @destination, @days_count, @budget_ceiling, @interests)
		RETURNING ` + tripColumns

	row := tx.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_id":       trip.OwnerID,
		"destination":    trip.Destination,
		"days_count":     trip.DaysCount,
		"budget_ceiling": trip.BudgetCeiling, // nil becomes NULL
		"interests":      trip.Interests,
	})
	created, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.CreateWithPlan: %w", err)
	}

	if err := insertPlan(ctx, tx, created.ID, plan); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.CreateWithPlan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.CreateWithPlan: commit: %w", err)
	}
	return created, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByOwnerPaged returns one page of the owner's trips, newest first.
func (r *pgTripRepo) ListByOwnerPaged(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `
		SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwnerPaged: %w", err)
	}
	defer rows.Close()

	var (
		trips []domain.Trip
		total int64
	)
	for rows.Next() {
		t, err := scanTripWithTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwnerPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwnerPaged: rows: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Delete removes a trip by primary key. day_plans and planned_activities go
// with it via ON DELETE CASCADE.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AcquireRegenLock claims the regeneration lock with one conditional UPDATE.
// The predicate accepts "lock absent OR lock expired", which is what makes a
// crashed holder's lock reclaimable after its TTL without a reaper process.
// Read-then-write would leave a race window between two concurrent requests;
// a single UPDATE whose WHERE clause carries the whole predicate does not.
func (r *pgTripRepo) AcquireRegenLock(ctx context.Context, id uuid.UUID, until time.Time) (bool, error) {
	const q = `
		UPDATE trips
		SET regen_lock_until = @until,
		    updated_at       = now()
		WHERE id = @id
		  AND (regen_lock_until IS NULL OR regen_lock_until < now())`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "until": until})
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.AcquireRegenLock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseRegenLock clears the lock field regardless of its current value.
func (r *pgTripRepo) ReleaseRegenLock(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE trips
		SET regen_lock_until = NULL,
		    updated_at       = now()
		WHERE id = @id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TripRepo.ReleaseRegenLock: %w", err)
	}
	return nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable budget/lock conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t      domain.Trip
		id     pgtype.UUID
		owner  pgtype.UUID
		budget pgtype.Int4
		lock   pgtype.Timestamptz
	)

	err := s.Scan(&id, &owner, &t.Destination, &t.DaysCount, &budget, &t.Interests,
		&lock, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	if budget.Valid {
		b := int(budget.Int32)
		t.BudgetCeiling = &b
	}
	if lock.Valid {
		lu := lock.Time
		t.RegenLockUntil = &lu
	}
	return t, nil
}

// scanTripWithTotal is scanTrip plus the window-function total column used by
// the paged listing.
func scanTripWithTotal(s scanner, total *int64) (domain.Trip, error) {
	var (
		t      domain.Trip
		id     pgtype.UUID
		owner  pgtype.UUID
		budget pgtype.Int4
		lock   pgtype.Timestamptz
	)

	err := s.Scan(&id, &owner, &t.Destination, &t.DaysCount, &budget, &t.Interests,
		&lock, &t.CreatedAt, &t.UpdatedAt, total)
	if err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	if budget.Valid {
		b := int(budget.Int32)
		t.BudgetCeiling = &b
	}
	if lock.Valid {
		lu := lock.Time
		t.RegenLockUntil = &lu
	}
	return t, nil
}
