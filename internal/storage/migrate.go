package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"spendwise/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema means an earlier migration stopped halfway. The state
// database only holds disposable client state, so the fix is to delete it.
var ErrDirtySchema = errors.New("state database schema is dirty")

// RunMigrations brings the state database at dbPath up to date and returns
// the resulting schema version.
func RunMigrations(dbPath string, logger *log.Logger) (uint, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage).With(log.FieldOperation, log.OpMigrate, log.FieldDBPath, dbPath)

	// Separate connection; the migrate driver closes it on m.Close.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	before, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		logger.Error("State database left mid-migration", log.FieldSchemaVersion, before, log.FieldErrorType, log.ErrorTypeDatabase)
		return before, fmt.Errorf("%w at version %d, delete %s to reset", ErrDirtySchema, before, dbPath)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migration failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeDatabase)
		return before, fmt.Errorf("run migrations: %w", err)
	}

	after, _, err := m.Version()
	if err != nil {
		return before, fmt.Errorf("read schema version: %w", err)
	}
	if after != before {
		logger.Info("State database migrated", log.FieldSchemaVersion, after, log.FieldPreviousVersion, before)
	} else {
		logger.Debug("State database up to date", log.FieldSchemaVersion, after)
	}
	return after, nil
}
