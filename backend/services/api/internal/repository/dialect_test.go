package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "mysql", want: DialectMySQL},
		{in: " Postgres ", want: DialectPostgres},
		{in: "sqlite", want: DialectSQLite},
		{in: "sqlite3", want: DialectSQLite},
		{in: "oracle", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewDB_DefaultsToMySQL(t *testing.T) {
	d := NewDB(nil, "", 0)
	if d.dialect != DialectMySQL {
		t.Fatalf("dialect = %q", d.dialect)
	}
	if got := d.rebind("SELECT 1 FROM t WHERE a = ?"); got != "SELECT 1 FROM t WHERE a = ?" {
		t.Errorf("rebind = %q", got)
	}
}

func TestUpsertTagQuery_MySQL(t *testing.T) {
	q := upsertTagQuery(DialectMySQL)
	if !strings.Contains(q, "ON DUPLICATE KEY UPDATE id_tag_info = VALUES(id_tag_info)") {
		t.Errorf("missing MySQL upsert clause:\n%s", q)
	}
	for _, bad := range []string{"ON CONFLICT", "EXCLUDED"} {
		if strings.Contains(q, bad) {
			t.Errorf("MySQL query contains %q:\n%s", bad, q)
		}
	}
}

func TestUpsertTagQuery_Postgres(t *testing.T) {
	q := upsertTagQuery(DialectPostgres)
	if !strings.Contains(q, "ON CONFLICT (id_tag) DO UPDATE SET") || !strings.Contains(q, "last_updated = EXCLUDED.last_updated") {
		t.Errorf("unexpected Postgres upsert:\n%s", q)
	}
}

func TestTransactionsByTagQuery_QuotesReservedTable(t *testing.T) {
	tests := map[Dialect]string{
		DialectMySQL:    "FROM `transaction` t",
		DialectPostgres: `FROM "transaction" t`,
		DialectSQLite:   `FROM "transaction" t`,
	}
	for d, want := range tests {
		for _, q := range []string{transactionsByTagQuery(d), transactionByIDQuery(d)} {
			if !strings.Contains(q, want) {
				t.Errorf("%s: want %q in\n%s", d, want, q)
			}
		}
	}
}

func TestIgnoreConflict(t *testing.T) {
	if got := DialectMySQL.ignoreConflict("user_id", "charge_box_id"); got != "ON DUPLICATE KEY UPDATE user_id = user_id" {
		t.Errorf("mysql = %q", got)
	}
	if got := DialectPostgres.ignoreConflict("user_id", "charge_box_id"); got != "ON CONFLICT (user_id, charge_box_id) DO NOTHING" {
		t.Errorf("postgres = %q", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql duplicate entry", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), true},
		{"mysql other", &mysql.MySQLError{Number: 1452}, false},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: app_users.phone (2067)"), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation = %v, want %v", got, tt.want)
			}
		})
	}
}
