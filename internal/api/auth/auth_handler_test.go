package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/rastrodeliberdade/rider-platform/app/middleware"
	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

// MockAuthService is a mock implementation of the AuthService interface.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func loginRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	js, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(js))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginHandler(t *testing.T) {
	mockService := new(MockAuthService)
	handler := NewHandlerImpl(mockService, slog.Default())

	t.Run("Success", func(t *testing.T) {
		req := loginRequest(t, LoginRequest{Email: "a@x.com", Password: "secret"})
		w := httptest.NewRecorder()

		mockService.On("Login", mock.Anything, "a@x.com", "secret").
			Return("signed-token", nil).Once()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "signed-token", resp.AccessToken)
		mockService.AssertExpectations(t)
	})

	t.Run("RejectedLoginsAreIndistinguishable", func(t *testing.T) {
		// Wrong password and unknown email both reach the handler as
		// ErrUnauthenticated; the response bodies must match byte for byte
		// apart from the request id.
		mockService.On("Login", mock.Anything, "a@x.com", "wrong").
			Return("", api.ErrUnauthenticated).Once()
		mockService.On("Login", mock.Anything, "ghost@x.com", "anything").
			Return("", api.ErrUnauthenticated).Once()

		w1 := httptest.NewRecorder()
		handler.Login(w1, loginRequest(t, LoginRequest{Email: "a@x.com", Password: "wrong"}))

		w2 := httptest.NewRecorder()
		handler.Login(w2, loginRequest(t, LoginRequest{Email: "ghost@x.com", Password: "anything"}))

		assert.Equal(t, http.StatusUnauthorized, w1.Code)
		assert.Equal(t, http.StatusUnauthorized, w2.Code)
		assert.Equal(t, w1.Body.String(), w2.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("LookupFailureIsBadGateway", func(t *testing.T) {
		mockService.On("Login", mock.Anything, "a@x.com", "secret").
			Return("", api.ErrLookupFailure).Once()

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, LoginRequest{Email: "a@x.com", Password: "secret"}))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, LoginRequest{Email: "a@x.com"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestValidateEndpoint(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 15*time.Minute, "test-issuer")
	handler := NewHandlerImpl(new(MockAuthService), slog.Default())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Authenticate(issuer))
		r.Get("/login/validate", handler.Validate)
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := issuer.Issue(&Principal{Email: "a@x.com"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/login/validate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "a@x.com", resp["subject"])
	})

	t.Run("MissingToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login/validate", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/login/validate", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
