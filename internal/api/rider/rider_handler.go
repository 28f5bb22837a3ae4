package rider

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
	"github.com/rastrodeliberdade/rider-platform/internal/types"
)

type HandlerImpl struct {
	riderService RiderService
	logger       *slog.Logger
}

func NewHandlerImpl(riderService RiderService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		riderService: riderService,
		logger:       logger,
	}
}

// Insert handles POST /riders.
func (h *HandlerImpl) Insert(w http.ResponseWriter, r *http.Request) {
	var req types.RiderUpsert
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := validateUpsert(&req, true); !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	summary, err := h.riderService.Insert(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, summary)
}

// Update handles PUT /riders/{id}.
func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid rider id")
		return
	}

	var req types.RiderUpsert
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := validateUpsert(&req, false); !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	summary, err := h.riderService.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// Delete handles DELETE /riders/{id}.
func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid rider id")
		return
	}

	if err := h.riderService.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// FindByID handles GET /riders/{id}.
func (h *HandlerImpl) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid rider id")
		return
	}

	summary, err := h.riderService.FindByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// FindAll handles GET /riders.
func (h *HandlerImpl) FindAll(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.riderService.FindAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

// FindByEmail handles GET /riders/search/by-email?email=.
func (h *HandlerImpl) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}

	summary, err := h.riderService.FindByEmail(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// FindByState handles GET /riders/search/by-state?state=.
func (h *HandlerImpl) FindByState(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "state query parameter is required")
		return
	}

	summaries, err := h.riderService.FindByState(r.Context(), state)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

// FindAuthByEmail handles GET /riders/internal/by-email?email=. It is the
// credential lookup endpoint the auth service consumes: 404 means "no such
// rider" and is a normal outcome for the caller.
func (h *HandlerImpl) FindAuthByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email query parameter is required")
		return
	}

	auth, err := h.riderService.FindAuthByEmail(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, auth)
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *api.ConflictError
	switch {
	case errors.As(err, &conflict):
		api.ErrorResponse(w, r, http.StatusConflict, conflict.Error())
	case errors.Is(err, api.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "rider not found")
	default:
		h.logger.ErrorContext(r.Context(), "Rider request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// validateUpsert enforces the minimal request shape. Password is required on
// create only; a blank password on update means "keep the current one".
func validateUpsert(req *types.RiderUpsert, create bool) (string, bool) {
	switch {
	case strings.TrimSpace(req.FullName) == "":
		return "full_name is required", false
	case strings.TrimSpace(req.Email) == "":
		return "email is required", false
	case strings.TrimSpace(req.BikerNickname) == "":
		return "biker_nickname is required", false
	case strings.TrimSpace(req.City) == "":
		return "city is required", false
	case strings.TrimSpace(req.State) == "":
		return "state is required", false
	case create && len(req.Password) < 8:
		return "password must have at least 8 characters", false
	}
	return "", true
}
