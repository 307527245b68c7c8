package repository

import (
	"context"
	"database/sql"
	"strconv"

	"deskbridge/internal/database"
	repoerrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
)

// DefaultListLimit applies when a caller passes a non-positive limit
const DefaultListLimit = 10

// MaxListLimit caps every list query
const MaxListLimit = 500

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository implements CapabilityRepository using SQLite
type SQLiteRepository struct {
	db          *sql.DB
	q           querier
	retryConfig *repoerrors.RetryConfig
	logger      logging.Logger
}

var _ CapabilityRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a repository over a connected database service
func NewSQLiteRepository(dbService database.Service, logger logging.Logger) *SQLiteRepository {
	return NewSQLiteRepositoryWithConfig(dbService, nil, logger)
}

// NewSQLiteRepositoryWithConfig creates a repository with a custom retry configuration
func NewSQLiteRepositoryWithConfig(dbService database.Service, retryConfig *repoerrors.RetryConfig, logger logging.Logger) *SQLiteRepository {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if retryConfig == nil {
		retryConfig = repoerrors.DefaultRetryConfig()
		retryConfig.Logger = logger
	}

	db := dbService.DB()
	return &SQLiteRepository{
		db:          db,
		q:           db,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// HealthCheck verifies that the capability tables are reachable
func (r *SQLiteRepository) HealthCheck(ctx context.Context) error {
	if r.db == nil {
		return repoerrors.HandleUnavailable("HealthCheck")
	}
	var n int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM options").Scan(&n); err != nil {
		return repoerrors.WrapDatabaseError("HealthCheck", err, nil)
	}
	return nil
}

// normalizeLimit clamps limit to (0, MaxListLimit]
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

// validateCapabilityID rejects ids that cannot name a capability
func validateCapabilityID(op string, capabilityID int64) error {
	if capabilityID <= 0 {
		return repoerrors.HandleValidationError(op, "capabilityID", strconv.FormatInt(capabilityID, 10), "must be positive")
	}
	return nil
}

// exec runs a write with retry, classifying the driver error and logging the
// final failure once.
func (r *SQLiteRepository) exec(ctx context.Context, op string, errCtx map[string]string, fn func() error) error {
	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		if err := fn(); err != nil {
			repoErr := repoerrors.WrapDatabaseError(op, err, errCtx)
			if repoerrors.IsRetryable(repoErr) {
				r.logger.Debug("Retryable error in "+op, "error", err)
			}
			return repoErr
		}
		return nil
	}, op)
	if err != nil {
		logging.LogRepositoryError(r.logger, err, op, toLogContext(errCtx))
	}
	return err
}

// scanIDs reads a single int64 column from rows
func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func toLogContext(errCtx map[string]string) map[string]interface{} {
	if len(errCtx) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(errCtx))
	for k, v := range errCtx {
		out[k] = v
	}
	return out
}

func idContext(capabilityID int64) map[string]string {
	return map[string]string{"capability_id": strconv.FormatInt(capabilityID, 10)}
}
