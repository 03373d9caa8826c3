package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
)

// TransactionRepository reads OCPP transactions from the SteVe schema.
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository returns repository instance.
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ErrTransactionNotFound is returned when no transaction has the requested id.
var ErrTransactionNotFound = errors.New("transaction not found")

// ListByIDTag returns the newest transactions started with idTag.
func (r *TransactionRepository) ListByIDTag(ctx context.Context, idTag string, limit int) ([]models.TransactionRecord, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(transactionsByTagQuery(r.db.dialect)), idTag, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetByID fetches a single transaction by SteVe's integer id.
func (r *TransactionRepository) GetByID(ctx context.Context, id int) (*models.TransactionRecord, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rec, err := scanTransaction(r.db.conn.QueryRowContext(ctx, r.db.rebind(transactionByIDQuery(r.db.dialect)), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func scanTransaction(row rowScanner) (models.TransactionRecord, error) {
	var (
		id, chargeBoxID, chargerName, idTag sql.NullString
		start                               sql.NullTime
		stop                                sql.NullTime
		meterStart, meterStop               sql.NullString
		errorCode                           sql.NullString
	)
	if err := row.Scan(&id, &chargeBoxID, &chargerName, &idTag, &start, &stop, &meterStart, &meterStop, &errorCode); err != nil {
		return models.TransactionRecord{}, err
	}
	rec := models.TransactionRecord{
		ID:            nullString(id),
		ChargeBoxID:   nullString(chargeBoxID),
		ChargerName:   nullString(chargerName),
		IDTag:         nullString(idTag),
		StopTimestamp: nullTime(stop),
		MeterStart:    nullString(meterStart),
		MeterStop:     nullString(meterStop),
		ErrorCode:     stringPtr(errorCode),
	}
	if start.Valid {
		rec.StartTimestamp = start.Time.UTC()
	}
	return rec, nil
}

const transactionColumns = `t.transaction_id, t.charge_box_id, cb.charge_point_model, t.id_tag,
		       t.start_timestamp, t.stop_timestamp, t.meter_start, t.meter_stop, t.error_code`

func transactionsByTagQuery(d Dialect) string {
	return `
		SELECT ` + transactionColumns + `
		FROM ` + d.quote("transaction") + ` t
		JOIN charge_box cb ON t.charge_box_id = cb.charge_box_id
		WHERE t.id_tag = ?
		ORDER BY t.start_timestamp DESC
		LIMIT ?
	`
}

func transactionByIDQuery(d Dialect) string {
	return `
		SELECT ` + transactionColumns + `
		FROM ` + d.quote("transaction") + ` t
		LEFT JOIN charge_box cb ON t.charge_box_id = cb.charge_box_id
		WHERE t.transaction_id = ?
	`
}
