package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
)

// ErrHistoryUnavailable hides database failures of the session history.
var ErrHistoryUnavailable = errors.New("history: service unavailable")

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// TransactionRepository defines the transaction reads used by the service.
type TransactionRepository interface {
	ListByIDTag(ctx context.Context, idTag string, limit int) ([]models.TransactionRecord, error)
}

// HistoryService derives charging sessions from OCPP transactions.
type HistoryService struct {
	repo   TransactionRepository
	tariff *TariffService
	logger *zap.Logger
	now    func() time.Time
}

// NewHistoryService builds HistoryService.
func NewHistoryService(repo TransactionRepository, tariff *TariffService, logger *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, tariff: tariff, logger: logger, now: time.Now}
}

// ClampHistoryLimit applies the default of 50 and the ceiling of 100.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

// ListForTag returns the newest sessions started with idTag.
func (s *HistoryService) ListForTag(ctx context.Context, idTag string, limit int) ([]models.ChargingSession, error) {
	idTag = strings.TrimSpace(idTag)
	if idTag == "" {
		return []models.ChargingSession{}, nil
	}

	recs, err := s.repo.ListByIDTag(ctx, idTag, ClampHistoryLimit(limit))
	if err != nil {
		s.logger.Error("list sessions failed", zap.String("id_tag", idTag), zap.Error(err))
		return nil, ErrHistoryUnavailable
	}

	now := s.now().UTC()
	out := make([]models.ChargingSession, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.toSession(rec, now))
	}
	return out, nil
}

func (s *HistoryService) toSession(rec models.TransactionRecord, now time.Time) models.ChargingSession {
	end := now
	if rec.StopTimestamp != nil {
		end = *rec.StopTimestamp
	}
	minutes := int(end.Sub(rec.StartTimestamp) / time.Minute)

	var energy float64
	if strings.TrimSpace(rec.MeterStart) != "" && strings.TrimSpace(rec.MeterStop) != "" {
		energy = CalculateDeltaEnergy(parseNumber(rec.MeterStart), parseNumber(rec.MeterStop))
	}

	return models.ChargingSession{
		ID:              rec.ID,
		ChargerID:       rec.ChargeBoxID,
		ChargerName:     rec.ChargerName,
		Date:            rec.StartTimestamp.UTC().Format(time.RFC3339),
		Duration:        FormatDuration(minutes),
		EnergyDelivered: energy,
		Cost:            s.tariff.Cost(energy),
		Status:          sessionStatus(rec),
	}
}

func sessionStatus(rec models.TransactionRecord) string {
	switch {
	case rec.StopTimestamp == nil:
		return models.SessionActive
	case rec.ErrorCode != nil:
		return models.SessionFailed
	default:
		return models.SessionCompleted
	}
}
