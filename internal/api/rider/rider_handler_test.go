package rider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
	"github.com/rastrodeliberdade/rider-platform/internal/types"
)

// MockRiderService is a mock implementation of the RiderService interface.
type MockRiderService struct {
	mock.Mock
}

func (m *MockRiderService) Insert(ctx context.Context, params types.RiderUpsert) (*types.RiderSummary, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RiderSummary), args.Error(1)
}

func (m *MockRiderService) Update(ctx context.Context, id uuid.UUID, params types.RiderUpsert) (*types.RiderSummary, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RiderSummary), args.Error(1)
}

func (m *MockRiderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRiderService) FindByID(ctx context.Context, id uuid.UUID) (*types.RiderSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RiderSummary), args.Error(1)
}

func (m *MockRiderService) FindByEmail(ctx context.Context, email string) (*types.RiderSummary, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RiderSummary), args.Error(1)
}

func (m *MockRiderService) FindByState(ctx context.Context, state string) ([]types.RiderSummary, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RiderSummary), args.Error(1)
}

func (m *MockRiderService) FindAll(ctx context.Context) ([]types.RiderSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RiderSummary), args.Error(1)
}

func (m *MockRiderService) FindAuthByEmail(ctx context.Context, email string) (*types.RiderAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RiderAuth), args.Error(1)
}

func newTestRouter(service RiderService) http.Handler {
	h := NewHandlerImpl(service, slog.Default())
	r := chi.NewRouter()
	r.Route("/riders", func(r chi.Router) {
		r.Post("/", h.Insert)
		r.Get("/", h.FindAll)
		r.Get("/search/by-email", h.FindByEmail)
		r.Get("/search/by-state", h.FindByState)
		r.Get("/internal/by-email", h.FindAuthByEmail)
		r.Get("/{id}", h.FindByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func upsertBody(t *testing.T, params types.RiderUpsert) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func validUpsert() types.RiderUpsert {
	return types.RiderUpsert{
		FullName:      "Ana Souza",
		Email:         "ana@test.com",
		BikerNickname: "ana.souza",
		Password:      "super-secret",
		City:          "Curitiba",
		State:         "PR",
	}
}

func TestInsertEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		service := new(MockRiderService)
		params := validUpsert()
		summary := &types.RiderSummary{
			ID:            uuid.New(),
			BikerNickname: params.BikerNickname,
			Email:         params.Email,
			City:          params.City,
			State:         params.State,
		}
		service.On("Insert", mock.Anything, params).Return(summary, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/riders", upsertBody(t, params))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got types.RiderSummary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, summary.ID, got.ID)
		assert.Equal(t, params.BikerNickname, got.BikerNickname)
		service.AssertExpectations(t)
	})

	t.Run("ConflictIs409", func(t *testing.T) {
		service := new(MockRiderService)
		params := validUpsert()
		conflict := &api.ConflictError{Field: "email", Value: params.Email}
		service.On("Insert", mock.Anything, params).Return(nil, conflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/riders", upsertBody(t, params))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), params.Email)
		service.AssertExpectations(t)
	})

	t.Run("ShortPasswordIs400", func(t *testing.T) {
		service := new(MockRiderService)
		params := validUpsert()
		params.Password = "short"

		req := httptest.NewRequest(http.MethodPost, "/riders", upsertBody(t, params))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		service.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("MissingFieldIs400", func(t *testing.T) {
		service := new(MockRiderService)
		params := validUpsert()
		params.BikerNickname = "  "

		req := httptest.NewRequest(http.MethodPost, "/riders", upsertBody(t, params))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "biker_nickname is required")
	})

	t.Run("MalformedBodyIs400", func(t *testing.T) {
		service := new(MockRiderService)

		req := httptest.NewRequest(http.MethodPost, "/riders", bytes.NewReader([]byte("{not-json")))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateEndpoint(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		service := new(MockRiderService)
		id := uuid.New()
		params := validUpsert()
		params.Password = "" // keep the stored hash
		summary := &types.RiderSummary{ID: id, Email: params.Email, BikerNickname: params.BikerNickname}
		service.On("Update", mock.Anything, id, params).Return(summary, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/riders/"+id.String(), upsertBody(t, params))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		service.AssertExpectations(t)
	})

	t.Run("UnknownIdIs404", func(t *testing.T) {
		service := new(MockRiderService)
		id := uuid.New()
		service.On("Update", mock.Anything, id, mock.Anything).Return(nil, api.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/riders/"+id.String(), upsertBody(t, validUpsert()))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("BadIdIs400", func(t *testing.T) {
		service := new(MockRiderService)

		req := httptest.NewRequest(http.MethodPut, "/riders/not-a-uuid", upsertBody(t, validUpsert()))
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		service.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteEndpoint(t *testing.T) {
	t.Run("NoContent", func(t *testing.T) {
		service := new(MockRiderService)
		id := uuid.New()
		service.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/riders/"+id.String(), nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		service.AssertExpectations(t)
	})

	t.Run("UnknownIdIs404", func(t *testing.T) {
		service := new(MockRiderService)
		id := uuid.New()
		service.On("Delete", mock.Anything, id).Return(api.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/riders/"+id.String(), nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestFindEndpoints(t *testing.T) {
	t.Run("FindByIDOK", func(t *testing.T) {
		service := new(MockRiderService)
		summary := &types.RiderSummary{ID: uuid.New(), Email: "a@x.com", BikerNickname: "a"}
		service.On("FindByID", mock.Anything, summary.ID).Return(summary, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/riders/"+summary.ID.String(), nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("FindByEmailMissingParamIs400", func(t *testing.T) {
		service := new(MockRiderService)

		req := httptest.NewRequest(http.MethodGet, "/riders/search/by-email", nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		service.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("FindByStateEmptyListIs200", func(t *testing.T) {
		service := new(MockRiderService)
		service.On("FindByState", mock.Anything, "XX").Return([]types.RiderSummary{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/riders/search/by-state?state=XX", nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("InternalLookupCarriesHash", func(t *testing.T) {
		service := new(MockRiderService)
		auth := &types.RiderAuth{ID: uuid.New(), Email: "a@x.com", PasswordHash: "$2a$10$hash"}
		service.On("FindAuthByEmail", mock.Anything, auth.Email).Return(auth, nil).Once()

		url := fmt.Sprintf("/riders/internal/by-email?email=%s", auth.Email)
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got types.RiderAuth
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, auth.PasswordHash, got.PasswordHash)
	})

	t.Run("InternalLookupUnknownEmailIs404", func(t *testing.T) {
		service := new(MockRiderService)
		service.On("FindAuthByEmail", mock.Anything, "ghost@x.com").Return(nil, api.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/riders/internal/by-email?email=ghost@x.com", nil)
		rr := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
