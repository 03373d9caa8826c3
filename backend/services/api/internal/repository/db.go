package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const defaultQueryTimeout = 5 * time.Second

// DB bundles the pool with its SQL dialect and per-query timeout.
// Queries are written with '?' placeholders and rebound for the driver.
type DB struct {
	conn        *sql.DB
	dialect     Dialect
	placeholder sq.PlaceholderFormat
	timeout     time.Duration
}

// NewDB wraps conn. An empty dialect means MySQL, SteVe's native database.
func NewDB(conn *sql.DB, dialect Dialect, timeout time.Duration) *DB {
	if dialect == "" {
		dialect = DialectMySQL
	}
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &DB{conn: conn, dialect: dialect, placeholder: dialect.placeholder(), timeout: timeout}
}

// Conn exposes the underlying pool.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Ping checks database reachability within the query timeout.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return d.conn.PingContext(ctx)
}

func (d *DB) rebind(query string) string {
	out, err := d.placeholder.ReplacePlaceholders(query)
	if err != nil {
		return query
	}
	return out
}

func (d *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func (d *DB) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

func nullString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
