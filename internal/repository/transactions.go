package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repoerrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
)

// WithTransaction runs fn against a repository bound to one transaction.
// The whole transaction is retried on busy errors; fn must be safe to rerun.
func (r *SQLiteRepository) WithTransaction(ctx context.Context, fn func(repo *SQLiteRepository) error) error {
	start := time.Now()

	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return repoerrors.WrapDatabaseError("WithTransaction.Begin", err, nil)
		}

		committed := false
		defer func() {
			if committed {
				return
			}
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				r.logger.Debug("Failed to rollback transaction", "rollback_error", rollbackErr)
			}
		}()

		txRepo := &SQLiteRepository{
			db:          r.db,
			q:           tx,
			retryConfig: r.retryConfig,
			logger:      r.logger,
		}
		if err := fn(txRepo); err != nil {
			r.logger.Debug("Transaction function failed", "error", err)
			return err
		}

		if err := tx.Commit(); err != nil {
			return repoerrors.WrapDatabaseError("WithTransaction.Commit", err, nil)
		}
		committed = true
		return nil
	}, "WithTransaction")

	if err == nil {
		logging.LogRepositoryOperation(r.logger, "WithTransaction", time.Since(start), nil)
	}
	return err
}
