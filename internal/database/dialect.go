package database

import (
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"photobroom/internal/database/migrations"
	"photobroom/internal/database/query"
)

// Dialect hides the differences between SQL engines. Statements are written
// with ":name" placeholders and rewritten by Rebind.
type Dialect interface {
	// Name is the backend name reported in ProjectInfo.
	Name() string
	// DriverName is the database/sql driver to open.
	DriverName() string
	Migrations() migrations.Driver
	// Constructor renders statements, including the engine's table lookup.
	Constructor() query.Constructor
	Rebind(statement string) string
	Bind(a args) []any
	// ReturningId reports whether inserts must ask for the new id with
	// RETURNING instead of reading LastInsertId.
	ReturningId() bool
	// Configure prepares a freshly opened pool.
	Configure(db *sql.DB) error
}

// args are named statement parameters.
type args map[string]any

// SQLiteDialect talks to SQLite through mattn/go-sqlite3.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string                   { return "sqlite" }
func (SQLiteDialect) DriverName() string             { return "sqlite3" }
func (SQLiteDialect) Migrations() migrations.Driver  { return migrations.SQLite }
func (SQLiteDialect) Rebind(statement string) string { return statement }
func (SQLiteDialect) ReturningId() bool              { return false }

func (SQLiteDialect) Constructor() query.Constructor {
	return query.Constructor{
		Marker:          ":",
		FindTableFormat: "SELECT name FROM sqlite_master WHERE type='table' AND name=%s",
	}
}

func (SQLiteDialect) Bind(a args) []any {
	out := make([]any, 0, len(a))
	for name, v := range a {
		out = append(out, sql.Named(name, v))
	}
	return out
}

func (SQLiteDialect) Configure(db *sql.DB) error {
	// One connection: :memory: databases are per connection and there is a
	// single writer anyway.
	db.SetMaxOpenConns(1)

	// SQLite default is OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// PostgresDialect talks to PostgreSQL through the pgx stdlib driver.
type PostgresDialect struct{}

var colonParam = regexp.MustCompile(`:(\w+)`)

func (PostgresDialect) Name() string                  { return "postgres" }
func (PostgresDialect) DriverName() string            { return "pgx" }
func (PostgresDialect) Migrations() migrations.Driver { return migrations.Postgres }
func (PostgresDialect) ReturningId() bool             { return true }

func (PostgresDialect) Constructor() query.Constructor {
	return query.Constructor{
		Marker:          "@",
		FindTableFormat: "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = %s",
	}
}

func (PostgresDialect) Rebind(statement string) string {
	return colonParam.ReplaceAllString(statement, "@$1")
}

// Bind passes the parameters as a single pgx.NamedArgs, which the pgx
// driver rewrites into positional arguments.
func (PostgresDialect) Bind(a args) []any {
	if len(a) == 0 {
		return nil
	}
	named := make(pgx.NamedArgs, len(a))
	for name, v := range a {
		named[name] = v
	}
	return []any{named}
}

func (PostgresDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(8)
	return db.Ping()
}
