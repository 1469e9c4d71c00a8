package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/avelis/tripweaver/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for the activity catalog.
// The planner only ever reads activities; writes come from the catalog
// endpoints.
type ActivityRepo interface {
	// Create inserts a new activity and returns the persisted record.
	// Returns domain.ErrDuplicate if (destination, name) already exists.
	Create(ctx context.Context, act domain.Activity) (domain.Activity, error)

	// GetByID retrieves a single activity by its UUID primary key.
	// Returns domain.ErrNotFound if no activity with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error)

	// ListByDestination returns every activity for a destination, ordered by
	// name. This is the full candidate pool handed to the planner.
	ListByDestination(ctx context.Context, destination string) ([]domain.Activity, error)

	// ListPaged returns one page of activities and the total count, optionally
	// filtered by destination (empty string means all destinations).
	ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.Activity, int64, error)

	// Update overwrites the mutable fields of an existing activity.
	// Returns domain.ErrNotFound if it does not exist, domain.ErrDuplicate if
	// the new (destination, name) collides with another row.
	Update(ctx context.Context, act domain.Activity) (domain.Activity, error)

	// Delete removes an activity by ID. Returns domain.ErrNotFound if it does
	// not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgActivityRepo is the Postgres implementation of ActivityRepo.
type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, destination, name, category, duration_hours, price_level, lat, lon, created_at, updated_at`

// Create inserts a new activity row and returns the full persisted record.
func (r *pgActivityRepo) Create(ctx context.Context, act domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (destination, name, category, duration_hours, price_level, lat, lon)
		VALUES (@destination, @name, @category, @duration_hours, @price_level, @lat, @lon)
		RETURNING ` + activityColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"destination":    act.Destination,
		"name":           act.Name,
		"category":       act.Category,
		"duration_hours": act.DurationHours,
		"price_level":    act.PriceLevel,
		"lat":            act.Lat, // nil becomes NULL
		"lon":            act.Lon,
	})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", mapUnique(err))
	}
	return result, nil
}

// GetByID retrieves an activity by primary key.
func (r *pgActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByDestination returns the full candidate pool for one destination.
// Name order keeps the result stable; the planner re-sorts by score anyway.
func (r *pgActivityRepo) ListByDestination(ctx context.Context, destination string) ([]domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE destination = @destination ORDER BY name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"destination": destination})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByDestination: %w", err)
	}
	defer rows.Close()

	return collectActivities(rows, "repo.ActivityRepo.ListByDestination")
}

// ListPaged returns one page of the catalog plus the unpaged total.
func (r *pgActivityRepo) ListPaged(ctx context.Context, destination string, p domain.PaginationParams) ([]domain.Activity, int64, error) {
	const q = `
		SELECT ` + activityColumns + `, count(*) OVER () AS total
		FROM activities
		WHERE (@destination = '' OR destination = @destination)
		ORDER BY destination, name
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"destination": destination,
		"limit":       p.Limit,
		"offset":      p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ActivityRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		acts  []domain.Activity
		total int64
	)
	for rows.Next() {
		var (
			a   domain.Activity
			id  pgtype.UUID
			lat pgtype.Float8
			lon pgtype.Float8
		)
		err := rows.Scan(&id, &a.Destination, &a.Name, &a.Category, &a.DurationHours,
			&a.PriceLevel, &lat, &lon, &a.CreatedAt, &a.UpdatedAt, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ActivityRepo.ListPaged: scan: %w", err)
		}
		a.ID = uuid.UUID(id.Bytes)
		if lat.Valid {
			v := lat.Float64
			a.Lat = &v
		}
		if lon.Valid {
			v := lon.Float64
			a.Lon = &v
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ActivityRepo.ListPaged: rows: %w", err)
	}
	if acts == nil {
		acts = []domain.Activity{}
	}
	return acts, total, nil
}

// Update overwrites the mutable fields of an activity and returns the updated record.
func (r *pgActivityRepo) Update(ctx context.Context, act domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities
		SET destination    = @destination,
		    name           = @name,
		    category       = @category,
		    duration_hours = @duration_hours,
		    price_level    = @price_level,
		    lat            = @lat,
		    lon            = @lon,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + activityColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":             act.ID,
		"destination":    act.Destination,
		"name":           act.Name,
		"category":       act.Category,
		"duration_hours": act.DurationHours,
		"price_level":    act.PriceLevel,
		"lat":            act.Lat,
		"lon":            act.Lon,
	})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", mapUnique(err))
	}
	return result, nil
}

// Delete removes an activity by primary key.
func (r *pgActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// collectActivities drains rows into a slice, never returning nil on success.
func collectActivities(rows pgx.Rows, op string) ([]domain.Activity, error) {
	acts := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return acts, nil
}

// scanActivity maps a single database row into a domain.Activity.
// It handles the UUID and nullable lat/lon conversions.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a   domain.Activity
		id  pgtype.UUID
		lat pgtype.Float8
		lon pgtype.Float8
	)

	err := s.Scan(&id, &a.Destination, &a.Name, &a.Category, &a.DurationHours,
		&a.PriceLevel, &lat, &lon, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	if lat.Valid {
		v := lat.Float64
		a.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		a.Lon = &v
	}
	return a, nil
}

// mapUnique converts a Postgres unique violation into domain.ErrDuplicate so
// callers never see driver error types.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicate
	}
	return err
}
