package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/sqlite/*.sql files/postgres/*.sql
var migrationFiles embed.FS

// Driver selects the migration set and the golang-migrate database driver.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

var (
	// ErrNoVersion means the database was never migrated.
	ErrNoVersion = errors.New("database has no schema version")
	// ErrDirty means a previous migration failed halfway.
	ErrDirty = errors.New("database schema is dirty")
	// ErrBehind means pending migrations exist.
	ErrBehind = errors.New("database schema is behind")
	// ErrAhead means the database was migrated by a newer binary.
	ErrAhead = errors.New("database schema is ahead of this binary")
)

// CheckDBMigrationStatus verifies that the database schema is up-to-date.
// Returns nil if the database is at the latest version, otherwise an error
// wrapping one of ErrNoVersion, ErrDirty, ErrBehind or ErrAhead.
func CheckDBMigrationStatus(db *sql.DB, driver Driver) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: that would close db, which the caller owns.

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return ErrNoVersion
		}
		return fmt.Errorf("failed to get database version: %w", err)
	}

	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirty, version)
	}

	latestVersion, err := LatestVersion(driver)
	if err != nil {
		return err
	}

	if version < latestVersion {
		return fmt.Errorf("%w: at version %d but latest is %d", ErrBehind, version, latestVersion)
	}
	if version > latestVersion {
		return fmt.Errorf("%w: version %d, binary knows %d", ErrAhead, version, latestVersion)
	}

	return nil
}

// MigrateUp runs all pending migrations to bring database to latest version.
func MigrateUp(db *sql.DB, driver Driver) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// LatestVersion returns the highest migration version embedded for driver.
func LatestVersion(driver Driver) (uint, error) {
	src, err := newSource(driver)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	latest, err := getLatestVersion(src)
	if err != nil {
		return 0, fmt.Errorf("failed to determine latest version: %w", err)
	}
	return latest, nil
}

func newSource(driver Driver) (source.Driver, error) {
	switch driver {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("unknown migration driver: %q", driver)
	}
	src, err := iofs.New(migrationFiles, "files/"+string(driver))
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}
	return src, nil
}

func newMigrate(db *sql.DB, driver Driver) (*migrate.Migrate, error) {
	sourceDriver, err := newSource(driver)
	if err != nil {
		return nil, err
	}

	var (
		dbDriver database.Driver
		name     string
	)
	switch driver {
	case SQLite:
		name = "sqlite3"
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case Postgres:
		name = "pgx5"
		dbDriver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	}
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, name, dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// getLatestVersion returns the highest version number available in the source.
func getLatestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}

	latestVersion := version
	for {
		// Next fails once the last migration is reached.
		nextVersion, err := src.Next(latestVersion)
		if err != nil {
			break
		}
		latestVersion = nextVersion
	}

	return latestVersion, nil
}
