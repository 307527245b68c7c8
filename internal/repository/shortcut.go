package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	repoerrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/types"
)

// ListShortcuts returns every bound shortcut ordered by id
func (r *SQLiteRepository) ListShortcuts(ctx context.Context) ([]types.Shortcut, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, capability_id, key, create_time FROM shortcut ORDER BY id`)
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("ListShortcuts", err, nil)
	}
	defer rows.Close()

	shortcuts := make([]types.Shortcut, 0)
	for rows.Next() {
		var s types.Shortcut
		if err := rows.Scan(&s.ID, &s.CapabilityID, &s.Key, &s.CreateTime); err != nil {
			return nil, repoerrors.WrapDatabaseError("ListShortcuts", err, nil)
		}
		shortcuts = append(shortcuts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, repoerrors.WrapDatabaseError("ListShortcuts", err, nil)
	}
	return shortcuts, nil
}

// SaveShortcut binds key to a capability, replacing the capability's previous
// key. A key already bound to another capability is a duplicate error.
func (r *SQLiteRepository) SaveShortcut(ctx context.Context, capabilityID int64, key string) (*types.Shortcut, error) {
	start := time.Now()
	if err := validateCapabilityID("SaveShortcut", capabilityID); err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, repoerrors.HandleValidationError("SaveShortcut", "key", key, "key is empty or whitespace")
	}

	errCtx := idContext(capabilityID)
	errCtx["key"] = key

	var saved types.Shortcut
	err := r.WithTransaction(ctx, func(tx *SQLiteRepository) error {
		var owner int64
		err := tx.q.QueryRowContext(ctx, `SELECT capability_id FROM shortcut WHERE key = ?`, key).Scan(&owner)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return repoerrors.WrapDatabaseError("SaveShortcut", err, errCtx)
		case owner != capabilityID:
			return repoerrors.HandleDuplicateError("SaveShortcut", "shortcut", "key", key)
		}

		if _, err := tx.q.ExecContext(ctx,
			`INSERT INTO shortcut (capability_id, key) VALUES (?, ?)
			 ON CONFLICT(capability_id) DO UPDATE SET key = excluded.key`,
			capabilityID, key); err != nil {
			return repoerrors.WrapDatabaseError("SaveShortcut", err, errCtx)
		}

		err = tx.q.QueryRowContext(ctx,
			`SELECT id, capability_id, key, create_time FROM shortcut WHERE capability_id = ?`,
			capabilityID).Scan(&saved.ID, &saved.CapabilityID, &saved.Key, &saved.CreateTime)
		if err != nil {
			return repoerrors.WrapDatabaseError("SaveShortcut", err, errCtx)
		}
		return nil
	})
	if err != nil {
		logging.LogRepositoryError(r.logger, err, "SaveShortcut", toLogContext(errCtx))
		return nil, err
	}

	logging.LogRepositoryOperation(r.logger, "SaveShortcut", time.Since(start), toLogContext(errCtx))
	return &saved, nil
}
