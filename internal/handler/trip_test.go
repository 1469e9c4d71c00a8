package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/handler"
	"github.com/avelis/tripweaver/backend/internal/middleware"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create      func(ctx context.Context, trip domain.Trip) (domain.Trip, string, error)
	regenerate  func(ctx context.Context, tripID, callerID uuid.UUID, interestOverride *string) (domain.Trip, string, error)
	getByID     func(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error)
	listByOwner func(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	delete      func(ctx context.Context, tripID, callerID uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, string, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) Regenerate(ctx context.Context, tripID, callerID uuid.UUID, interestOverride *string) (domain.Trip, string, error) {
	return m.regenerate(ctx, tripID, callerID, interestOverride)
}
func (m *mockTripServicer) GetByID(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, tripID, callerID)
}
func (m *mockTripServicer) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByOwner(ctx, ownerID, p)
}
func (m *mockTripServicer) Delete(ctx context.Context, tripID, callerID uuid.UUID) error {
	return m.delete(ctx, tripID, callerID)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// testUserID is the authenticated caller all handler tests run as.
var testUserID = uuid.MustParse("7d0c6e3a-41d2-4a5f-9c2e-1f6b8a9d0e21")

// stubAuth injects testUserID into the request context, standing in for the
// JWT middleware so handler tests never touch tokens.
func stubAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUserID)))
	})
}

// newHTTPHandler wires a Server with the given mocks into the chi router the
// same way main.go does in production, minus real authentication.
func newHTTPHandler(trips handler.TripServicer, activities handler.ActivityServicer, export handler.ExportServicer) http.Handler {
	return handler.NewServer(trips, activities, export).Routes(stubAuth)
}

func tripFixture() domain.Trip {
	budget := 3
	return domain.Trip{
		ID:            uuid.New(),
		OwnerID:       testUserID,
		Destination:   "Lisbon",
		DaysCount:     3,
		BudgetCeiling: &budget,
		Interests:     "culture, gastronomy",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// errorCode extracts the error.code field from an error response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error.Code
}

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		create: func(_ context.Context, in domain.Trip) (domain.Trip, string, error) {
			assert.Equal(t, testUserID, in.OwnerID, "owner comes from auth context, not the body")
			assert.Equal(t, "Lisbon", in.Destination)
			assert.Equal(t, 3, in.DaysCount)
			return fixture, "", nil
		},
	}

	body := jsonBody(t, map[string]any{
		"destination": "Lisbon",
		"days_count":  3,
		"interests":   "culture, gastronomy",
	})

	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		domain.Trip
		Warning string `json:"warning"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, fixture.Destination, resp.Destination)
	assert.Empty(t, resp.Warning)
}

func TestCreateTrip_201_WithWarning(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, string, error) {
			return tripFixture(), "insufficient activities for 2 of 3 days", nil
		},
	}

	body := jsonBody(t, map[string]any{"destination": "Lisbon", "days_count": 3})
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "insufficient activities for 2 of 3 days", resp.Warning)
}

func TestCreateTrip_422_ValidationError(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, string, error) {
			return domain.Trip{}, "", fmt.Errorf("service.TripService.Create: %w: destination is required", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{"days_count": 3})
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestCreateTrip_400_MalformedJSON(t *testing.T) {
	svc := &mockTripServicer{}

	req := httptest.NewRequest(http.MethodPost, "/trips", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", errorCode(t, rec))
}

// ---- POST /trips/{id}/regenerate -------------------------------------------

func TestRegenerateTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		regenerate: func(_ context.Context, tripID, callerID uuid.UUID, override *string) (domain.Trip, string, error) {
			assert.Equal(t, fixture.ID, tripID)
			assert.Equal(t, testUserID, callerID)
			assert.Nil(t, override, "empty body means no interest override")
			return fixture, "", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips/"+fixture.ID.String()+"/regenerate", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegenerateTrip_200_WithInterestOverride(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		regenerate: func(_ context.Context, _, _ uuid.UUID, override *string) (domain.Trip, string, error) {
			require.NotNil(t, override)
			assert.Equal(t, "nature, sport", *override)
			return fixture, "", nil
		},
	}

	body := jsonBody(t, map[string]any{"interests": "nature, sport"})
	req := httptest.NewRequest(http.MethodPost, "/trips/"+fixture.ID.String()+"/regenerate", body)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegenerateTrip_409_LockHeld(t *testing.T) {
	svc := &mockTripServicer{
		regenerate: func(_ context.Context, _, _ uuid.UUID, _ *string) (domain.Trip, string, error) {
			return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", domain.ErrRegenInProgress)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/regenerate", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "regeneration_in_progress", errorCode(t, rec))
}

func TestRegenerateTrip_403_NotOwner(t *testing.T) {
	svc := &mockTripServicer{
		regenerate: func(_ context.Context, _, _ uuid.UUID, _ *string) (domain.Trip, string, error) {
			return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", domain.ErrForbidden)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/regenerate", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegenerateTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		regenerate: func(_ context.Context, _, _ uuid.UUID, _ *string) (domain.Trip, string, error) {
			return domain.Trip{}, "", fmt.Errorf("service.TripService.Regenerate: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips/"+uuid.NewString()+"/regenerate", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateTrip_400_BadID(t *testing.T) {
	svc := &mockTripServicer{}

	req := httptest.NewRequest(http.MethodPost, "/trips/not-a-uuid/regenerate", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /trips/{id} -------------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	fixture.Days = []domain.DayPlan{
		{ID: uuid.New(), DayNumber: 1, Activities: []domain.PlannedActivity{}},
	}
	svc := &mockTripServicer{
		getByID: func(_ context.Context, tripID, callerID uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, tripID)
			assert.Equal(t, testUserID, callerID)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, 1, resp.Days[0].DayNumber)
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- GET /trips ------------------------------------------------------------

func TestListTrips_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		listByOwner: func(_ context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			assert.Equal(t, testUserID, ownerID)
			assert.Equal(t, 2, p.Page)
			assert.Equal(t, 5, p.Limit)
			return []domain.Trip{fixture}, 11, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips?page=2&limit=5", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Trip `json:"data"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 5, resp.Pagination.Limit)
	assert.Equal(t, 11, resp.Pagination.Total)
}

// ---- DELETE /trips/{id} ----------------------------------------------------

func TestDeleteTrip_204(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		delete: func(_ context.Context, tripID, callerID uuid.UUID) error {
			assert.Equal(t, fixture.ID, tripID)
			assert.Equal(t, testUserID, callerID)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteTrip_403_NotOwner(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error {
			return fmt.Errorf("service.TripService.Delete: %w", domain.ErrForbidden)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}
