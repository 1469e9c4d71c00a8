package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/repo"
	"github.com/avelis/tripweaver/backend/testutil"
)

// newTestTx opens a transaction against the test database that is rolled back
// automatically when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; TestMain has already applied all
// migrations by the time any test here runs.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test — no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// activityFixture returns a domain.Activity with sensible defaults.
// Callers can override individual fields after calling this function.
func activityFixture() domain.Activity {
	lat, lon := 38.7223, -9.1393
	return domain.Activity{
		Destination:   "Lisbon",
		Name:          "Alfama Walking Tour",
		Category:      "culture",
		DurationHours: 3,
		PriceLevel:    1,
		Lat:           &lat,
		Lon:           &lon,
	}
}

func TestActivityRepo_Create(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	input := activityFixture()
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, input.Destination, got.Destination)
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.Category, got.Category)
	assert.Equal(t, input.DurationHours, got.DurationHours)
	assert.Equal(t, input.PriceLevel, got.PriceLevel)
	require.NotNil(t, got.Lat)
	assert.Equal(t, *input.Lat, *got.Lat)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestActivityRepo_Create_NilCoordinates(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	input := activityFixture()
	input.Lat = nil
	input.Lon = nil

	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.Nil(t, got.Lat)
	assert.Nil(t, got.Lon)
}

func TestActivityRepo_Create_Duplicate(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	_, err := r.Create(ctx, activityFixture())
	require.NoError(t, err)

	_, err = r.Create(ctx, activityFixture())

	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestActivityRepo_Create_SameNameDifferentDestination(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	_, err := r.Create(ctx, activityFixture())
	require.NoError(t, err)

	other := activityFixture()
	other.Destination = "Porto"

	_, err = r.Create(ctx, other)

	assert.NoError(t, err, "uniqueness is scoped per destination")
}

func TestActivityRepo_GetByID(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, activityFixture())
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
}

func TestActivityRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	_, err := r.GetByID(ctx, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityRepo_ListByDestination(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	a1 := activityFixture()
	a1.Name = "Zoo Visit"
	a2 := activityFixture()
	a2.Name = "Botanical Garden"
	other := activityFixture()
	other.Destination = "Porto"
	other.Name = "Port Wine Cellars"

	for _, a := range []domain.Activity{a1, a2, other} {
		_, err := r.Create(ctx, a)
		require.NoError(t, err)
	}

	got, err := r.ListByDestination(ctx, "Lisbon")

	require.NoError(t, err)
	require.Len(t, got, 2, "only Lisbon activities")
	// Ordered by name.
	assert.Equal(t, "Botanical Garden", got[0].Name)
	assert.Equal(t, "Zoo Visit", got[1].Name)
}

func TestActivityRepo_ListByDestination_Empty(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	got, err := r.ListByDestination(ctx, "Nowhere")

	require.NoError(t, err)
	assert.NotNil(t, got, "empty result should be a slice, not nil")
	assert.Empty(t, got)
}

func TestActivityRepo_ListPaged(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	for _, name := range []string{"Aquarium", "Castle", "Museum"} {
		a := activityFixture()
		a.Name = name
		_, err := r.Create(ctx, a)
		require.NoError(t, err)
	}

	page1, total, err := r.ListPaged(ctx, "Lisbon", domain.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "Aquarium", page1[0].Name)
	assert.Equal(t, "Castle", page1[1].Name)

	page2, total, err := r.ListPaged(ctx, "Lisbon", domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "Museum", page2[0].Name)
}

func TestActivityRepo_Update(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, activityFixture())
	require.NoError(t, err)

	created.Name = "Alfama Evening Tour"
	created.DurationHours = 2.5
	created.PriceLevel = 2
	created.Lat = nil
	created.Lon = nil

	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Alfama Evening Tour", updated.Name)
	assert.Equal(t, 2.5, updated.DurationHours)
	assert.Equal(t, 2, updated.PriceLevel)
	assert.Nil(t, updated.Lat)
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestActivityRepo_Update_NotFound(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	ghost := activityFixture()
	ghost.ID = uuid.New()

	_, err := r.Update(ctx, ghost)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityRepo_Delete(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, activityFixture())
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewActivityRepo(newTestTx(t))
	ctx := context.Background()

	err := r.Delete(ctx, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
