package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/culina-ai/backend/internal/models"
)

// Migrations holds the versioned postgres schema under migrations/
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsTable records the applied schema version
const MigrationsTable = "schema_migrations"

// RunMigrations prepares the schema: AutoMigrate on sqlite, the SQL files on postgres
func RunMigrations(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using gorm auto-migration for sqlite")
		return db.WithContext(ctx).AutoMigrate(models.All()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	m, err := NewMigrator(ctx, sqlDB, Migrations, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}

// Migrator applies the versioned schema of a postgres database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// NewMigrator reads migrations/*.sql from fsys. It holds one connection of db until Close;
// db itself stays open.
func NewMigrator(ctx context.Context, db *sql.DB, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("failed to get migration connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		_ = conn.Close()
		_ = source.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		_ = source.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{migrate: m, logger: logger.Named("migrate")}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	start := time.Now()
	from, _, err := m.Version()
	if err != nil {
		return err
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema up to date", zap.Uint("version", from))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	to, _, _ := m.Version()
	m.logger.Info("migrations applied",
		zap.Uint("from_version", from),
		zap.Uint("to_version", to),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Down rolls back the latest migration
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	version, _, _ := m.Version()
	m.logger.Info("migration rolled back", zap.Uint("version", version))
	return nil
}

// Version returns the applied version and whether the last migration failed halfway.
// A database with no migrations reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Close releases the migration connection
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}
