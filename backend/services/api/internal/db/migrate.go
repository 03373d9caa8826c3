package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations for the app_* tables this service owns.
// Dialect is a goose dialect name: "mysql", "postgres" or "sqlite3".
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	dir, err := migrationsDir(dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}

// migrationsDir maps a dialect to its DDL set. SQLite accepts the Postgres DDL.
func migrationsDir(dialect string) (string, error) {
	switch dialect {
	case "mysql":
		return "migrations/mysql", nil
	case "postgres", "sqlite3":
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}
}
