package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
)

var (
	// ErrUserNotFound represents missing user rows.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserConflict is returned when a unique identifier is already taken.
	ErrUserConflict = errors.New("user identifier already registered")
)

// UserRepository handles app_users and its satellite tables.
type UserRepository struct {
	db *DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, phone, id_tag, wallet_balance, is_verified,
	ev_model, ev_battery_kwh, ev_vehicle_no, created_at, updated_at`

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO app_users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var model, vehicle sql.NullString
	var battery sql.NullFloat64
	if ev := user.EVDetails; ev != nil {
		model = sql.NullString{String: ev.Model, Valid: true}
		battery = sql.NullFloat64{Float64: ev.BatteryCapacity, Valid: true}
		if ev.VehicleNumber != nil {
			vehicle = sql.NullString{String: *ev.VehicleNumber, Valid: true}
		}
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.db.conn.ExecContext(ctx, r.db.rebind(query),
		user.ID, user.Name, toNullString(user.Email), toNullString(user.Phone), user.IDTag,
		user.WalletBalance.StringFixed(2), user.IsVerified,
		model, battery, vehicle, user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
	)
	if err != nil && isUniqueViolation(err) {
		return ErrUserConflict
	}
	return err
}

// GetByID fetches a user with saved chargers and payment methods.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByPhone fetches a user by normalized phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getBy(ctx, "phone", phone)
}

// GetByEmail fetches a user by lowercased email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM app_users WHERE ` + column + ` = ? LIMIT 1`

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var (
		user         models.User
		email, phone sql.NullString
		balance      decimal.NullDecimal
		evModel      sql.NullString
		evBattery    sql.NullFloat64
		evVehicle    sql.NullString
	)
	err := r.db.conn.QueryRowContext(ctx, r.db.rebind(query), value).Scan(
		&user.ID, &user.Name, &email, &phone, &user.IDTag, &balance, &user.IsVerified,
		&evModel, &evBattery, &evVehicle, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Email = stringPtr(email)
	user.Phone = stringPtr(phone)
	if balance.Valid {
		user.WalletBalance = balance.Decimal
	}
	if evModel.Valid {
		user.EVDetails = &models.EVDetails{
			Model:           evModel.String,
			BatteryCapacity: evBattery.Float64,
			VehicleNumber:   stringPtr(evVehicle),
		}
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	if user.SavedChargers, err = r.savedChargers(ctx, user.ID); err != nil {
		return nil, err
	}
	if user.PaymentMethods, err = r.paymentMethods(ctx, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) savedChargers(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT charge_box_id FROM app_user_saved_chargers
		WHERE user_id = ?
		ORDER BY created_at, charge_box_id
	`
	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *UserRepository) paymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	const query = `
		SELECT id, last4, type FROM app_user_payment_methods
		WHERE user_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PaymentMethod{}
	for rows.Next() {
		var pm models.PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.Last4, &pm.Type); err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

// UpdateProfile applies the non-nil fields of upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) error {
	builder := r.db.builder().Update("app_users").
		Set("updated_at", at.UTC()).
		Where("id = ?", id)
	if upd.Name != nil {
		builder = builder.Set("name", *upd.Name)
	}
	if upd.Email != nil {
		builder = builder.Set("email", strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if ev := upd.EVDetails; ev != nil {
		builder = builder.
			Set("ev_model", ev.Model).
			Set("ev_battery_kwh", ev.BatteryCapacity).
			Set("ev_vehicle_no", toNullString(ev.VehicleNumber))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddSavedCharger bookmarks a charger. Saving twice is a no-op.
func (r *UserRepository) AddSavedCharger(ctx context.Context, userID, chargerID string, at time.Time) error {
	query := `
		INSERT INTO app_user_saved_chargers (user_id, charge_box_id, created_at)
		VALUES (?, ?, ?)
		` + r.db.dialect.ignoreConflict("user_id", "charge_box_id")

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), userID, chargerID, at.UTC())
	return err
}

// RemoveSavedCharger deletes a bookmark if present.
func (r *UserRepository) RemoveSavedCharger(ctx context.Context, userID, chargerID string) error {
	const query = `DELETE FROM app_user_saved_chargers WHERE user_id = ? AND charge_box_id = ?`

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), userID, chargerID)
	return err
}

// SavedChargerIDs lists bookmarked charger ids.
func (r *UserRepository) SavedChargerIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return r.savedChargers(ctx, userID)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUniqueViolation matches MySQL error 1062, Postgres SQLSTATE 23505 and SQLite's constraint text.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
