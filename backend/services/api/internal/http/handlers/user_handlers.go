package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

// UserService is the profile surface used by UserHandlers.
type UserService interface {
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
	SaveCharger(ctx context.Context, userID, chargerID string) ([]string, error)
	UnsaveCharger(ctx context.Context, userID, chargerID string) ([]string, error)
	SavedChargers(ctx context.Context, userID string) ([]string, error)
}

// UserHandlers serves /api/users.
type UserHandlers struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandlers returns handler.
func NewUserHandlers(users UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{users: users, logger: logger}
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var upd models.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), claims.UserID, upd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

// SavedChargers handles GET /api/users/saved-chargers.
func (h *UserHandlers) SavedChargers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	h.respondSaved(w, r, func(ctx context.Context) ([]string, error) {
		return h.users.SavedChargers(ctx, claims.UserID)
	})
}

// SaveCharger handles POST /api/users/saved-chargers/{chargerId}.
func (h *UserHandlers) SaveCharger(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	h.respondSaved(w, r, func(ctx context.Context) ([]string, error) {
		return h.users.SaveCharger(ctx, claims.UserID, chi.URLParam(r, "chargerId"))
	})
}

// UnsaveCharger handles DELETE /api/users/saved-chargers/{chargerId}.
func (h *UserHandlers) UnsaveCharger(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	h.respondSaved(w, r, func(ctx context.Context) ([]string, error) {
		return h.users.UnsaveCharger(ctx, claims.UserID, chi.URLParam(r, "chargerId"))
	})
}

func (h *UserHandlers) respondSaved(w http.ResponseWriter, r *http.Request, fn func(context.Context) ([]string, error)) {
	ids, err := fn(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"savedChargers": ids})
}

func (h *UserHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProfile):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "Invalid profile data")
	case errors.Is(err, service.ErrChargerNotFound):
		response.Error(w, http.StatusNotFound, response.CodeChargerNotFound, "Charger not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, response.CodeUserNotFound, "User not found")
	case errors.Is(err, service.ErrIdentifierInUse):
		response.Error(w, http.StatusConflict, response.CodeIdentifierInUse, "Email or phone already registered")
	case errors.Is(err, service.ErrChargerServiceUnavailable):
		response.Error(w, http.StatusInternalServerError, response.CodeChargerServiceUnavailable, "Unable to fetch chargers right now")
	default:
		if !errors.Is(err, service.ErrUserServiceUnavailable) {
			h.logger.Error("user request failed", zap.Error(err))
		}
		response.Error(w, http.StatusInternalServerError, response.CodeUserServiceUnavailable, "User service unavailable")
	}
}
