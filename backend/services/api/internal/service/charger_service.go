package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/ocpp"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
)

// ErrChargerServiceUnavailable hides database failures of the charger directory.
var ErrChargerServiceUnavailable = errors.New("charger: service unavailable")

const (
	heartbeatWindow = 10 * time.Minute
	fallbackLat     = 28.6139
	fallbackLng     = 77.2090
)

// ChargerRepository defines the charge point reads used by the service.
type ChargerRepository interface {
	ListAvailable(ctx context.Context, q repository.ChargerQuery) ([]models.ChargeBoxRecord, error)
	GetByID(ctx context.Context, id string) (*models.ChargeBoxRecord, error)
}

// ChargerService exposes the charger directory.
type ChargerService struct {
	repo   ChargerRepository
	tariff *TariffService
	logger *zap.Logger
	now    func() time.Time
}

// NewChargerService builds ChargerService.
func NewChargerService(repo ChargerRepository, tariff *TariffService, logger *zap.Logger) *ChargerService {
	return &ChargerService{repo: repo, tariff: tariff, logger: logger, now: time.Now}
}

// ListAvailable returns chargers that are free and have reported within the heartbeat window.
func (s *ChargerService) ListAvailable(ctx context.Context, filter models.ChargerFilter) ([]models.Charger, error) {
	recs, err := s.repo.ListAvailable(ctx, repository.ChargerQuery{
		HeartbeatSince: s.now().UTC().Add(-heartbeatWindow),
		MinPower:       filter.MinPower,
		Type:           strings.TrimSpace(filter.Type),
	})
	if err != nil {
		s.logger.Error("list available chargers failed", zap.Error(err))
		return nil, ErrChargerServiceUnavailable
	}

	withDistance := filter.Lat != nil && filter.Lng != nil
	out := make([]models.Charger, 0, len(recs))
	for _, rec := range recs {
		c := s.toCharger(rec)
		if withDistance {
			d := Distance(*filter.Lat, *filter.Lng, c.Lat, c.Lng)
			if filter.MaxDistanceKm != nil && d > *filter.MaxDistanceKm {
				continue
			}
			c.Distance = &d
		}
		out = append(out, c)
	}

	if withDistance && filter.MaxDistanceKm != nil {
		sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	}
	return out, nil
}

// GetByID returns the charger or nil when it does not exist.
func (s *ChargerService) GetByID(ctx context.Context, id string) (*models.Charger, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrChargerNotFound) {
			return nil, nil
		}
		s.logger.Error("get charger failed", zap.String("charger_id", id), zap.Error(err))
		return nil, ErrChargerServiceUnavailable
	}
	c := s.toCharger(*rec)
	return &c, nil
}

func (s *ChargerService) toCharger(rec models.ChargeBoxRecord) models.Charger {
	name := rec.Name
	if name == "" {
		name = rec.ID
	}
	status := rec.ConnectorStatus
	if status == "" {
		status = rec.BoxStatus
	}
	return models.Charger{
		ID:          rec.ID,
		Name:        name,
		Lat:         parseCoordinate(rec.Latitude, fallbackLat),
		Lng:         parseCoordinate(rec.Longitude, fallbackLng),
		Status:      MapChargerStatus(status),
		Power:       parseNumber(rec.Power),
		Type:        connectorType(rec.ConnectorType),
		RatePerUnit: s.tariff.RatePerUnit(),
	}
}

// MapChargerStatus folds OCPP connector statuses into the four client statuses.
func MapChargerStatus(raw string) string {
	switch strings.TrimSpace(raw) {
	case ocpp.ConnectorAvailable, ocpp.ConnectorPreparing:
		return models.ChargerAvailable
	case ocpp.ConnectorCharging, ocpp.ConnectorSuspendedEV, ocpp.ConnectorSuspendedEVSE,
		ocpp.ConnectorFinishing, ocpp.ConnectorReserved, models.ChargerOccupied:
		return models.ChargerOccupied
	case ocpp.ConnectorFaulted:
		return models.ChargerFaulted
	default:
		return models.ChargerOffline
	}
}

func connectorType(raw string) string {
	switch raw = strings.TrimSpace(raw); raw {
	case models.ConnectorType2, models.ConnectorCCS2, models.ConnectorCHAdeMO, models.ConnectorType1:
		return raw
	default:
		return models.ConnectorType2
	}
}

// parseNumber converts a textual numeric column, defaulting to 0.
func parseNumber(raw string) float64 {
	return parseFinite(raw, 0)
}

func parseCoordinate(raw string, fallback float64) float64 {
	return parseFinite(raw, fallback)
}

// parseFinite rejects "NaN" and "Inf", which ParseFloat accepts but JSON cannot carry.
func parseFinite(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
