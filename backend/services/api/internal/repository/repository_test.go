package repository

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	appdb "github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/db"
)

var baseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// newTestDB opens an in-memory SQLite loaded with the SteVe fixture tables and the app_* migrations.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:?_time_format=sqlite")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	schema, err := os.ReadFile("testdata/steve_schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}

	if err := appdb.Migrate(context.Background(), conn, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewDB(conn, DialectSQLite, time.Second)
}

func mustExec(t *testing.T, db *DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Conn().Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestDB_RebindDollar(t *testing.T) {
	d := NewDB(nil, DialectPostgres, 0)
	got := d.rebind("SELECT a FROM t WHERE b = ? AND c = ?")
	if got != "SELECT a FROM t WHERE b = $1 AND c = $2" {
		t.Errorf("rebind = %q", got)
	}
	if d.timeout != defaultQueryTimeout {
		t.Errorf("timeout = %v, want default", d.timeout)
	}
}
