package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	dberrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
)

var errNotConnected = errors.New("database not connected")

// SQLiteService implements Service for SQLite.
//
// Lifecycle: NewSQLiteService, Connect, optionally Migrate, then Close.
type SQLiteService struct {
	db              *sql.DB
	config          *Config
	migrationRunner MigrationManager
	logger          logging.Logger
}

var _ Service = (*SQLiteService)(nil)

// NewSQLiteService creates a new SQLite database service
func NewSQLiteService(logger logging.Logger) *SQLiteService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteService{logger: logger}
}

// Connect opens and pings the database, replacing any previous connection
func (s *SQLiteService) Connect(ctx context.Context, config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return dberrors.HandleValidationError("Connect", "config", config.Path, err.Error())
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close existing database connection", "error", err)
		}
		s.db = nil
		s.migrationRunner = nil
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return dberrors.WrapDatabaseError("Connect", err, map[string]string{"phase": "open", "path": config.Path})
	}
	s.configureConnectionPool(db, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.WrapDatabaseError("Connect", err, map[string]string{"phase": "ping", "path": config.Path})
	}

	s.db = db
	s.config = config
	s.migrationRunner = NewMigrationRunner(db, s.logger)

	s.logger.Info("Connected to SQLite database", "path", config.Path)
	return nil
}

// Close closes the database connection. Closing a closed service is a no-op.
func (s *SQLiteService) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.migrationRunner = nil
	if err != nil {
		return dberrors.WrapDatabaseError("Close", err, nil)
	}
	s.logger.Info("Closed SQLite database connection")
	return nil
}

// Migrate validates and applies the embedded migrations
func (s *SQLiteService) Migrate(ctx context.Context) error {
	if s.db == nil || s.migrationRunner == nil {
		return dberrors.NewRepositoryError("Migrate", errNotConnected, dberrors.ErrCodeConnection)
	}
	if err := s.migrationRunner.ValidateMigrations(); err != nil {
		return dberrors.NewRepositoryErrorWithContext("Migrate", err, dberrors.ErrCodeSchema, map[string]string{"phase": "validation"})
	}
	if err := s.migrationRunner.RunMigrations(ctx); err != nil {
		return dberrors.WrapDatabaseError("Migrate", err, map[string]string{"phase": "execution"})
	}
	return nil
}

// Health pings the database and runs a trivial query
func (s *SQLiteService) Health(ctx context.Context) error {
	if s.db == nil {
		return dberrors.NewRepositoryError("Health", errNotConnected, dberrors.ErrCodeConnection)
	}
	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return dberrors.WrapDatabaseError("Health", err, map[string]string{"phase": "query"})
	}
	return nil
}

// DB returns the underlying database connection for use by repositories
func (s *SQLiteService) DB() *sql.DB {
	return s.db
}

// GetMigrationVersion returns the current migration version
func (s *SQLiteService) GetMigrationVersion(ctx context.Context) (int64, error) {
	if s.db == nil || s.migrationRunner == nil {
		return 0, dberrors.NewRepositoryError("GetMigrationVersion", errNotConnected, dberrors.ErrCodeConnection)
	}
	version, err := s.migrationRunner.GetCurrentVersion(ctx)
	if err != nil {
		return 0, dberrors.WrapDatabaseError("GetMigrationVersion", err, nil)
	}
	return version, nil
}

// GetStats returns connection pool statistics
func (s *SQLiteService) GetStats() sql.DBStats {
	if s.db == nil {
		return sql.DBStats{}
	}
	return s.db.Stats()
}

// Optimize refreshes planner statistics and compacts the database file
func (s *SQLiteService) Optimize(ctx context.Context) error {
	if s.db == nil {
		return dberrors.NewRepositoryError("Optimize", errNotConnected, dberrors.ErrCodeConnection)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return dberrors.WrapDatabaseError("Optimize", err, map[string]string{"phase": "analyze"})
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Warn("wal_checkpoint failed", "error", err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return dberrors.WrapDatabaseError("Optimize", err, map[string]string{"phase": "vacuum"})
	}
	s.logger.Info("Database optimization completed")
	return nil
}

// configureConnectionPool limits SQLite to one connection unless WAL allows
// concurrent readers, and then to at most four.
func (s *SQLiteService) configureConnectionPool(db *sql.DB, config *Config) {
	if config.ForceSingleConnection || !strings.EqualFold(config.JournalMode, "WAL") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.logger.Debug("Configured SQLite for single connection mode", "journalMode", config.JournalMode)
	} else {
		maxConns := config.MaxConnections
		if maxConns <= 0 || maxConns > 4 {
			maxConns = 4
		}
		idleConns := max(min(config.MaxIdleConns, maxConns), 1)
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(idleConns)
		s.logger.Debug("Configured SQLite connection pool", "maxOpenConns", maxConns, "maxIdleConns", idleConns)
	}

	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
}
