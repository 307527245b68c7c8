package repository

import (
	"context"
	"time"

	repoerrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
)

// RecordRecent marks a capability as just used. Earlier entries for the same
// capability are replaced so each capability appears once.
func (r *SQLiteRepository) RecordRecent(ctx context.Context, capabilityID int64) error {
	start := time.Now()
	if err := validateCapabilityID("RecordRecent", capabilityID); err != nil {
		return err
	}

	err := r.WithTransaction(ctx, func(tx *SQLiteRepository) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM recently WHERE capability_id = ?`, capabilityID); err != nil {
			return repoerrors.WrapDatabaseError("RecordRecent", err, idContext(capabilityID))
		}
		if _, err := tx.q.ExecContext(ctx, `INSERT INTO recently (capability_id) VALUES (?)`, capabilityID); err != nil {
			return repoerrors.WrapDatabaseError("RecordRecent", err, idContext(capabilityID))
		}
		return nil
	})
	if err != nil {
		logging.LogRepositoryError(r.logger, err, "RecordRecent", toLogContext(idContext(capabilityID)))
		return err
	}

	logging.LogRepositoryOperation(r.logger, "RecordRecent", time.Since(start), map[string]interface{}{
		"capability_id": capabilityID,
	})
	return nil
}

// ListRecent returns up to limit capability ids, most recently used first
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT capability_id FROM recently ORDER BY create_time DESC, id DESC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("ListRecent", err, nil)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("ListRecent", err, nil)
	}
	return ids, nil
}
