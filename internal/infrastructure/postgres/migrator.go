package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator applies schema migrations. An empty path uses the migrations
// compiled into the binary.
type Migrator struct {
	databaseURL    string
	migrationsPath string
	logger         zerolog.Logger
}

// NewMigrator creates a Migrator.
func NewMigrator(databaseURL, migrationsPath string, logger zerolog.Logger) *Migrator {
	return &Migrator{
		databaseURL:    databaseURL,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	if m.migrationsPath != "" {
		return migrate.New("file://"+m.migrationsPath, m.databaseURL)
	}

	src, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(mg)

	if err := mg.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info().Msg("database migrations: applied successfully")
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down() error {
	mg, err := m.open()
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(mg)

	if err := mg.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info().Msg("database migrations: rolled back successfully")
	return nil
}

// Version reports the current schema version.
func (m *Migrator) Version() (uint, bool, error) {
	mg, err := m.open()
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(mg)

	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func closeMigrate(mg *migrate.Migrate) {
	_, _ = mg.Close()
}
