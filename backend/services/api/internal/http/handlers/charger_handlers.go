package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/middleware"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

// ChargerService is the directory surface used by ChargerHandlers.
type ChargerService interface {
	ListAvailable(ctx context.Context, filter models.ChargerFilter) ([]models.Charger, error)
	GetByID(ctx context.Context, id string) (*models.Charger, error)
}

// SavedChargerLister returns a user's bookmarked charger ids.
type SavedChargerLister interface {
	SavedChargers(ctx context.Context, userID string) ([]string, error)
}

// ChargerHandlers serves /api/chargers.
type ChargerHandlers struct {
	chargers ChargerService
	saved    SavedChargerLister
	logger   *zap.Logger
}

// NewChargerHandlers returns handler. saved may be nil.
func NewChargerHandlers(chargers ChargerService, saved SavedChargerLister, logger *zap.Logger) *ChargerHandlers {
	return &ChargerHandlers{chargers: chargers, saved: saved, logger: logger}
}

// List handles GET /api/chargers.
func (h *ChargerHandlers) List(w http.ResponseWriter, r *http.Request) {
	filter, field, ok := parseChargerFilter(r)
	if !ok {
		response.ErrorWithDetails(w, http.StatusBadRequest, response.CodeInvalidInput, "Invalid query parameter",
			map[string]string{"field": field})
		return
	}

	chargers, err := h.chargers.ListAvailable(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && h.saved != nil {
		h.markSaved(r.Context(), claims.UserID, chargers)
	}
	response.Success(w, http.StatusOK, map[string]any{
		"chargers": chargers,
		"count":    len(chargers),
	})
}

// Get handles GET /api/chargers/{id}.
func (h *ChargerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	charger, err := h.chargers.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if charger == nil {
		response.Error(w, http.StatusNotFound, response.CodeChargerNotFound, "Charger not found")
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"charger": charger})
}

func (h *ChargerHandlers) markSaved(ctx context.Context, userID string, chargers []models.Charger) {
	ids, err := h.saved.SavedChargers(ctx, userID)
	if err != nil {
		h.logger.Warn("saved chargers lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range chargers {
		_, saved := set[chargers[i].ID]
		chargers[i].Saved = &saved
	}
}

func (h *ChargerHandlers) writeError(w http.ResponseWriter, err error) {
	if !errors.Is(err, service.ErrChargerServiceUnavailable) {
		h.logger.Error("charger request failed", zap.Error(err))
	}
	response.Error(w, http.StatusInternalServerError, response.CodeChargerServiceUnavailable, "Unable to fetch chargers right now")
}

func parseChargerFilter(r *http.Request) (models.ChargerFilter, string, bool) {
	q := r.URL.Query()
	var filter models.ChargerFilter
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"lat", &filter.Lat},
		{"lng", &filter.Lng},
		{"maxDistanceKm", &filter.MaxDistanceKm},
		{"minPower", &filter.MinPower},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return filter, p.name, false
		}
		*p.dst = &v
	}
	if filter.Lat != nil && (*filter.Lat < -90 || *filter.Lat > 90) {
		return filter, "lat", false
	}
	if filter.Lng != nil && (*filter.Lng < -180 || *filter.Lng > 180) {
		return filter, "lng", false
	}
	filter.Type = strings.TrimSpace(q.Get("type"))
	return filter, "", true
}
