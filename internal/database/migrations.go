package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"deskbridge/internal/infrastructure/logging"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrationRunner applies the embedded goose migrations to one database
type MigrationRunner struct {
	db     *sql.DB
	logger logging.Logger
}

var _ MigrationManager = (*MigrationRunner)(nil)

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *sql.DB, logger logging.Logger) *MigrationRunner {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &MigrationRunner{db: db, logger: logger}
}

// provider builds a goose provider scoped to this runner's database.
// Goose's package-level dialect and base FS are never touched.
func (mr *MigrationRunner) provider() (*goose.Provider, error) {
	if mr.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, mr.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, nil
}

// RunMigrations executes all pending migrations
func (mr *MigrationRunner) RunMigrations(ctx context.Context) error {
	p, err := mr.provider()
	if err != nil {
		return err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		mr.logger.Debug("Applied migration", "version", r.Source.Version, "duration", r.Duration.String())
	}

	if version, err := p.GetDBVersion(ctx); err == nil {
		mr.logger.Info("Database migrated to version", "version", version, "applied", len(results))
	}
	return nil
}

// GetCurrentVersion returns the current migration version
func (mr *MigrationRunner) GetCurrentVersion(ctx context.Context) (int64, error) {
	p, err := mr.provider()
	if err != nil {
		return 0, err
	}
	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// ValidateMigrations checks that the embedded migrations can be loaded
func (mr *MigrationRunner) ValidateMigrations() error {
	p, err := mr.provider()
	if err != nil {
		return err
	}
	sources := p.ListSources()
	if len(sources) == 0 {
		return fmt.Errorf("no migrations found in embedded filesystem")
	}
	mr.logger.Debug("Found embedded migrations", "count", len(sources))
	return nil
}
