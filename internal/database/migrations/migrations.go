package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/uptrace/bun"

	"web-calendar/internal/config"
	"web-calendar/internal/logger"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrationFiles embed.FS

// MigrateOptions defines configuration options for migration
type MigrateOptions struct {
	// Driver selects the embedded migration set and the golang-migrate database driver.
	Driver string
}

// DefaultOptions returns the default migration options
func DefaultOptions() MigrateOptions {
	return MigrateOptions{
		Driver: config.DriverSQLite,
	}
}

// Runner handles database migrations
type Runner struct {
	bunDB    *bun.DB
	options  MigrateOptions
	logger   *logger.Logger
	source   source.Driver
	migrator *migrate.Migrate
}

// NewRunner creates a new migration runner
func NewRunner(bunDB *bun.DB, opts MigrateOptions, log *logger.Logger) *Runner {
	return &Runner{
		bunDB:   bunDB,
		options: opts,
		logger:  log,
	}
}

// Initialize prepares the migration system
func (r *Runner) Initialize() error {
	sqlDB := r.bunDB.DB

	var driver database.Driver
	var err error
	switch r.options.Driver {
	case config.DriverSQLite:
		driver, err = sqlite.WithInstance(sqlDB, &sqlite.Config{})
	case config.DriverPostgres:
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", r.options.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migration driver: %w", r.options.Driver, err)
	}

	src, err := iofs.New(migrationFiles, "sql/"+r.options.Driver)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, r.options.Driver, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	r.source = src
	r.migrator = migrator
	return nil
}

func (r *Runner) ensureInitialized() error {
	if r.migrator != nil {
		return nil
	}
	return r.Initialize()
}

// RunMigrations brings the schema to the latest version, repairing a dirty state left by
// an interrupted run first.
func (r *Runner) RunMigrations() error {
	if err := r.ensureInitialized(); err != nil {
		return err
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		r.logger.Warn("MIGRATE", fmt.Sprintf("Detected dirty migration at version %d, forcing it clean", version))
		if err := r.migrator.Force(int(version)); err != nil {
			return fmt.Errorf("failed to fix dirty migration: %w", err)
		}
	}

	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, err = r.migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	r.logger.LogDatabase("MIGRATE", "calendar", fmt.Sprintf("schema at version %d", version))
	return nil
}

// MigrateUp runs all pending migrations
func (r *Runner) MigrateUp() error {
	if err := r.ensureInitialized(); err != nil {
		return err
	}

	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back all migrations
func (r *Runner) MigrateDown() error {
	if err := r.ensureInitialized(); err != nil {
		return err
	}

	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateTo migrates up or down to a specific version
func (r *Runner) MigrateTo(version uint) error {
	if err := r.ensureInitialized(); err != nil {
		return err
	}

	if err := r.migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return nil
}

// Version returns the applied schema version; ok is false when nothing has been applied.
func (r *Runner) Version() (version uint, dirty bool, ok bool, err error) {
	if err := r.ensureInitialized(); err != nil {
		return 0, false, false, err
	}

	version, dirty, err = r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, true, nil
}

// Close releases the migration source. The database handle belongs to the caller and is
// left open: the sqlite driver would close it, so only the postgres migrator (which
// releases just its own connection) is closed in full.
func (r *Runner) Close() error {
	if r.migrator != nil && r.options.Driver == config.DriverPostgres {
		srcErr, dbErr := r.migrator.Close()
		r.migrator, r.source = nil, nil
		if srcErr != nil {
			return fmt.Errorf("error closing migrator source: %w", srcErr)
		}
		if dbErr != nil {
			return fmt.Errorf("error closing migrator connection: %w", dbErr)
		}
		return nil
	}
	if r.source != nil {
		if err := r.source.Close(); err != nil {
			return fmt.Errorf("error closing migrator source: %w", err)
		}
	}
	return nil
}
