package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

// SessionService is the lifecycle surface used by SessionHandlers.
type SessionService interface {
	StartSession(ctx context.Context, in service.StartSessionInput) (*models.SessionRequest, error)
	StopSession(ctx context.Context, in service.StopSessionInput) (*service.StopResult, error)
}

// HistoryService lists past charging sessions.
type HistoryService interface {
	ListForTag(ctx context.Context, idTag string, limit int) ([]models.ChargingSession, error)
}

// SessionHandlers serves /api/sessions.
type SessionHandlers struct {
	sessions SessionService
	history  HistoryService
	logger   *zap.Logger
}

// NewSessionHandlers returns handler.
func NewSessionHandlers(sessions SessionService, history HistoryService, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{sessions: sessions, history: history, logger: logger}
}

// Start handles POST /api/sessions/start.
func (h *SessionHandlers) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req struct {
		ChargerID   string `json:"charger_id"`
		ConnectorID int    `json:"connector_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ChargerID) == "" {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "charger_id required")
		return
	}

	session, err := h.sessions.StartSession(r.Context(), service.StartSessionInput{
		ChargerID:   req.ChargerID,
		ConnectorID: req.ConnectorID,
		UserID:      claims.UserID,
		IDTag:       claims.IDTag,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusAccepted, map[string]any{
		"message": "Session start requested",
		"session": session,
	})
}

// Stop handles POST /api/sessions/{id}/stop.
func (h *SessionHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	res, err := h.sessions.StopSession(r.Context(), service.StopSessionInput{
		SessionID: chi.URLParam(r, "id"),
		UserID:    claims.UserID,
		IDTag:     claims.IDTag,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusAccepted, map[string]any{
		"message":   "Session stop requested",
		"sessionId": res.SessionID,
		"status":    res.Status,
	})
}

// History handles GET /api/sessions/history.
func (h *SessionHandlers) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.ErrorWithDetails(w, http.StatusBadRequest, response.CodeInvalidInput, "limit must be a positive integer",
				map[string]string{"field": "limit"})
			return
		}
		limit = n
	}

	sessions, err := h.history.ListForTag(r.Context(), claims.IDTag, limit)
	if err != nil {
		if !errors.Is(err, service.ErrHistoryUnavailable) {
			h.logger.Error("session history failed", zap.Error(err))
		}
		response.Error(w, http.StatusInternalServerError, response.CodeHistoryServiceUnavailable, "Unable to fetch session history right now")
		return
	}
	response.Success(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *SessionHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSessionRequest):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "Invalid session request")
	case errors.Is(err, service.ErrChargerNotFound):
		response.Error(w, http.StatusNotFound, response.CodeChargerNotFound, "Charger not found")
	case errors.Is(err, service.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, response.CodeSessionNotFound, "Session not found")
	case errors.Is(err, service.ErrSessionRejected):
		response.Error(w, http.StatusConflict, response.CodeSessionRejected, "Charger rejected the request")
	case errors.Is(err, service.ErrChargerServiceUnavailable):
		response.Error(w, http.StatusInternalServerError, response.CodeChargerServiceUnavailable, "Unable to fetch chargers right now")
	default:
		if !errors.Is(err, service.ErrSessionUnavailable) {
			h.logger.Error("session request failed", zap.Error(err))
		}
		response.Error(w, http.StatusInternalServerError, response.CodeSessionServiceUnavailable, "Session service unavailable")
	}
}
