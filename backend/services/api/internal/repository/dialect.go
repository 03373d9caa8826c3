package repository

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect names the SQL flavour of the SteVe database. Values match goose dialect names.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// ParseDialect validates a configured driver name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectMySQL, DialectPostgres, DialectSQLite:
		return d, nil
	case "sqlite":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", name)
	}
}

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// quote escapes identifiers that collide with reserved words, such as SteVe's transaction table.
func (d Dialect) quote(ident string) string {
	if d == DialectMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// upsert renders the conflict clause that overwrites cols when keys already exist.
func (d Dialect) upsert(keys []string, cols ...string) string {
	sets := make([]string, len(cols))
	if d == DialectMySQL {
		// VALUES() keeps MariaDB builds of SteVe working.
		for i, c := range cols {
			sets[i] = c + " = VALUES(" + c + ")"
		}
		return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	for i, c := range cols {
		sets[i] = c + " = EXCLUDED." + c
	}
	return "ON CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// ignoreConflict renders a clause that turns a duplicate insert into a no-op.
func (d Dialect) ignoreConflict(keys ...string) string {
	if d == DialectMySQL {
		return "ON DUPLICATE KEY UPDATE " + keys[0] + " = " + keys[0]
	}
	return "ON CONFLICT (" + strings.Join(keys, ", ") + ") DO NOTHING"
}
