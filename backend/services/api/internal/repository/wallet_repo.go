package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
)

// WalletRepository keeps wallet balances and their ledger consistent.
type WalletRepository struct {
	db *DB
}

// NewWalletRepository returns repository instance.
func NewWalletRepository(db *DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Credit adds entry.Amount to the user's balance and records entry in one transaction.
func (r *WalletRepository) Credit(ctx context.Context, entry models.WalletTransaction) (decimal.Decimal, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback() //nolint:errcheck

	const update = `
		UPDATE app_users
		SET wallet_balance = wallet_balance + ?, updated_at = ?
		WHERE id = ?
	`
	res, err := tx.ExecContext(ctx, r.db.rebind(update),
		entry.Amount.StringFixed(2), entry.CreatedAt.UTC(), entry.UserID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	} else if n == 0 {
		return decimal.Zero, ErrUserNotFound
	}

	// MySQL has no UPDATE ... RETURNING; the row lock from the update holds until commit.
	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, r.db.rebind(`SELECT wallet_balance FROM app_users WHERE id = ?`), entry.UserID).
		Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("read balance: %w", err)
	}

	const insert = `
		INSERT INTO app_wallet_transactions (id, user_id, kind, amount, method, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, r.db.rebind(insert),
		entry.ID, entry.UserID, entry.Kind, entry.Amount.StringFixed(2),
		entry.Method, entry.Reference, entry.CreatedAt.UTC(),
	); err != nil {
		return decimal.Zero, fmt.Errorf("record wallet transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	return balance.Round(2), nil
}

// ListTransactions returns the newest ledger rows first.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error) {
	const query = `
		SELECT id, user_id, kind, amount, method, reference, created_at
		FROM app_wallet_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.WalletTransaction{}
	for rows.Next() {
		var (
			t      models.WalletTransaction
			method sql.NullString
			at     time.Time
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &method, &t.Reference, &at); err != nil {
			return nil, err
		}
		t.Method = nullString(method)
		t.CreatedAt = at.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
