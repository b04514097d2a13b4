package postgres

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Migrator applies versioned SQL migrations from a directory.
type Migrator struct {
	cfg    config.DatabaseConfig
	logger logging.Logger
}

// NewMigrator builds a Migrator for the configured database.
func NewMigrator(cfg config.DatabaseConfig, log logging.Logger) *Migrator {
	return &Migrator{cfg: cfg, logger: log}
}

// pgxDSN rewrites the pool DSN with the scheme golang-migrate's pgx/v5
// driver registers under.
func (m *Migrator) pgxDSN() string {
	return "pgx5://" + m.cfg.DSN()[len("postgres://"):]
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	inst, err := migrate.New("file://"+m.cfg.MigrationsPath, m.pgxDSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migrate instance")
	}
	return inst, nil
}

// Up applies all pending migrations.  A schema already at the latest version
// is not an error.
func (m *Migrator) Up() error {
	inst, err := m.open()
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := inst.Up(); err != nil && err != migrate.ErrNoChange {
		version, _, _ := inst.Version()
		return errors.Wrap(err, errors.ErrCodeDatabaseError,
			fmt.Sprintf("failed to run migrations (current version: %d)", version))
	}

	version, dirty, err := inst.Version()
	if err != nil && err != migrate.ErrNilVersion {
		m.logger.Warn("Failed to read migration version", logging.Err(err))
	}
	m.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back a single migration step.
func (m *Migrator) Down() error {
	inst, err := m.open()
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := inst.Steps(-1); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to roll back migration")
	}
	m.logger.Info("Rolled back one migration step")
	return nil
}

// Version reports the current schema version and dirty flag.
func (m *Migrator) Version() (uint, bool, error) {
	inst, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer inst.Close()

	version, dirty, err := inst.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	return version, dirty, nil
}
