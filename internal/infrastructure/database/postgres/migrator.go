package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // registers the file:// source

	"github.com/ingredient-intel/iie/internal/config"
)

// withMigrator opens a migrate.Migrate instance against dbURL/migrationsPath,
// runs fn against it, and always closes it before returning. Every exported
// function in this file is a thin wrapper around one migrate.Migrate call,
// so this is the one place connection errors are handled.
func withMigrator(dbURL, migrationsPath string, fn func(*migrate.Migrate) error) error {
	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return fmt.Errorf("postgres: open migrator: %w", err)
	}
	defer m.Close()
	return fn(m)
}

// MigrationDSN builds the dbURL RunMigrations and its siblings expect from a
// DatabaseConfig, so callers never hand-assemble a connection string twice.
func MigrationDSN(cfg config.DatabaseConfig) string {
	return buildConnString(cfg)
}

// RunMigrations applies every pending migration under migrationsPath. Safe
// to call on every process start: a schema already at the latest version is
// not an error.
func RunMigrations(dbURL, migrationsPath string) error {
	return withMigrator(dbURL, migrationsPath, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: apply migrations: %w", err)
		}
		return nil
	})
}

// RollbackMigration reverts the schema by steps migrations. steps must be
// positive; use ResetDatabase to tear everything down.
func RollbackMigration(dbURL, migrationsPath string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("postgres: rollback steps must be greater than 0, got %d", steps)
	}
	return withMigrator(dbURL, migrationsPath, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("postgres: no migrations to roll back")
			}
			return fmt.Errorf("postgres: rollback %d step(s): %w", steps, err)
		}
		return nil
	})
}

// MigrationStatus reports the currently applied version and whether the
// schema was left dirty by a failed migration. version is 0 with dirty=false
// before the first migration has ever been applied.
func MigrationStatus(dbURL, migrationsPath string) (version uint, dirty bool, err error) {
	err = withMigrator(dbURL, migrationsPath, func(m *migrate.Migrate) error {
		v, d, statusErr := m.Version()
		if statusErr != nil {
			if errors.Is(statusErr, migrate.ErrNilVersion) {
				return nil
			}
			return fmt.Errorf("postgres: read migration version: %w", statusErr)
		}
		version, dirty = v, d
		return nil
	})
	return version, dirty, err
}

// ResetDatabase drops the schema to version 0 and re-applies every
// migration. Destructive — development and integration tests only.
func ResetDatabase(dbURL, migrationsPath string) error {
	return withMigrator(dbURL, migrationsPath, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: roll back all migrations: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("postgres: re-apply migrations: %w", err)
		}
		return nil
	})
}

// ForceMigrationVersion overwrites the recorded schema version without
// running any migration, to clear a dirty state left by a partial failure.
// Pass -1 to clear the version entirely.
func ForceMigrationVersion(dbURL, migrationsPath string, version int) error {
	return withMigrator(dbURL, migrationsPath, func(m *migrate.Migrate) error {
		if err := m.Force(version); err != nil {
			return fmt.Errorf("postgres: force version %d: %w", version, err)
		}
		return nil
	})
}
