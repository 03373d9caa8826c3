package db

import (
	"context"
	"database/sql"
	"fmt"

	libdb "github.com/AttriPardeep/VoltStartEV-Backend/backend/libs/db"
)

// Open connects to the SteVe database with the driver matching dialect.
func Open(ctx context.Context, dialect, dsn string, maxOpenConns int) (*sql.DB, error) {
	opts := libdb.PoolOptions{MaxOpenConns: maxOpenConns}
	switch dialect {
	case "mysql":
		return libdb.NewMySQLDB(ctx, dsn, opts)
	case "postgres":
		return libdb.NewPostgresDB(ctx, dsn, opts)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", dialect)
	}
}
