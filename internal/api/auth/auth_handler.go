package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	appMiddleware "github.com/rastrodeliberdade/rider-platform/app/middleware"
	"github.com/rastrodeliberdade/rider-platform/internal/api"
)

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /login. Unknown email and wrong password produce the
// same 401 body.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, api.ErrLookupFailure):
			api.ErrorResponse(w, r, http.StatusBadGateway, "credential lookup unavailable")
		default:
			h.logger.ErrorContext(r.Context(), "Login failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{AccessToken: token})
}

// Validate handles GET /login/validate behind the Authenticate middleware.
// It reports the subject of the presented token.
func (h *HandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	subject, ok := r.Context().Value(appMiddleware.SubjectKey).(string)
	if !ok || subject == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "invalid token")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"subject": subject})
}
