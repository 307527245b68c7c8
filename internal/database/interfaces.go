package database

import (
	"context"
	"database/sql"
)

// Service manages the SQLite connection backing capability storage
type Service interface {
	Connect(ctx context.Context, config *Config) error
	Close() error
	Health(ctx context.Context) error
	DB() *sql.DB

	Migrate(ctx context.Context) error
	GetMigrationVersion(ctx context.Context) (int64, error)

	Optimize(ctx context.Context) error
	GetStats() sql.DBStats
}

// MigrationManager applies the embedded schema migrations
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	GetCurrentVersion(ctx context.Context) (int64, error)
	ValidateMigrations() error
}
