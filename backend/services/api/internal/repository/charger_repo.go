package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
)

// ErrChargerNotFound represents a missing charge_box row.
var ErrChargerNotFound = errors.New("charger not found")

const availableChargerLimit = 100

// ChargerQuery carries the database-side filters of the availability listing.
type ChargerQuery struct {
	HeartbeatSince time.Time
	MinPower       *float64
	Type           string
}

// ChargerRepository reads charge points from the SteVe schema.
type ChargerRepository struct {
	db *DB
}

// NewChargerRepository returns repository instance.
func NewChargerRepository(db *DB) *ChargerRepository {
	return &ChargerRepository{db: db}
}

var chargerColumns = []string{
	"cb.charge_box_id",
	"cb.charge_point_model",
	"cb.charge_point_vendor",
	"cb.power",
	"cb.max_current",
	"cb.latitude",
	"cb.longitude",
	"cb.status",
	"cs.status",
	"cb.connector_type",
	"cb.last_heartbeat",
}

func (r *ChargerRepository) selectChargers() sq.SelectBuilder {
	return r.db.builder().
		Select(chargerColumns...).
		From("charge_box cb").
		LeftJoin("connector_status cs ON cb.charge_box_id = cs.charge_box_id AND cs.connector_id = 1")
}

// ListAvailable returns charge points that are available and have sent a heartbeat since q.HeartbeatSince.
func (r *ChargerRepository) ListAvailable(ctx context.Context, q ChargerQuery) ([]models.ChargeBoxRecord, error) {
	builder := r.selectChargers().
		Where(sq.Eq{"cb.status": models.ChargerAvailable}).
		Where(sq.Or{
			sq.Eq{"cs.status": nil},
			sq.Eq{"cs.status": []string{"Available", "Preparing"}},
		}).
		Where(sq.GtOrEq{"cb.last_heartbeat": q.HeartbeatSince.UTC()})

	if q.MinPower != nil {
		builder = builder.Where(sq.GtOrEq{"cb.power": *q.MinPower})
	}
	if q.Type != "" {
		builder = builder.Where(sq.Eq{"cb.connector_type": q.Type})
	}

	query, args, err := builder.
		OrderBy("cb.last_heartbeat DESC", "cb.power DESC").
		Limit(availableChargerLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build charger query: %w", err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChargeBoxRecord
	for rows.Next() {
		rec, err := scanChargeBox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// GetByID fetches a single charge point regardless of availability.
func (r *ChargerRepository) GetByID(ctx context.Context, id string) (*models.ChargeBoxRecord, error) {
	query, args, err := r.selectChargers().
		Where(sq.Eq{"cb.charge_box_id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build charger query: %w", err)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rec, err := scanChargeBox(r.db.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChargerNotFound
		}
		return nil, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChargeBox(row rowScanner) (*models.ChargeBoxRecord, error) {
	var (
		id, name, vendor, power, maxCurrent sql.NullString
		lat, lng, boxStatus, connStatus     sql.NullString
		connectorType                       sql.NullString
		heartbeat                           sql.NullTime
	)
	if err := row.Scan(&id, &name, &vendor, &power, &maxCurrent, &lat, &lng,
		&boxStatus, &connStatus, &connectorType, &heartbeat); err != nil {
		return nil, err
	}
	return &models.ChargeBoxRecord{
		ID:              nullString(id),
		Name:            nullString(name),
		Vendor:          nullString(vendor),
		Power:           nullString(power),
		MaxCurrent:      nullString(maxCurrent),
		Latitude:        nullString(lat),
		Longitude:       nullString(lng),
		BoxStatus:       nullString(boxStatus),
		ConnectorStatus: nullString(connStatus),
		ConnectorType:   nullString(connectorType),
		LastHeartbeat:   nullTime(heartbeat),
	}, nil
}
