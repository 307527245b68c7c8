package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	repoerrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/types"
)

// ListOptions returns every stored option ordered by id
func (r *SQLiteRepository) ListOptions(ctx context.Context) ([]types.Option, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, capability_id, key, val, COALESCE(remark, ''), last_time FROM options ORDER BY id`)
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("ListOptions", err, nil)
	}
	defer rows.Close()

	options := make([]types.Option, 0)
	for rows.Next() {
		var o types.Option
		if err := rows.Scan(&o.ID, &o.CapabilityID, &o.Key, &o.Val, &o.Remark, &o.LastTime); err != nil {
			return nil, repoerrors.WrapDatabaseError("ListOptions", err, nil)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, repoerrors.WrapDatabaseError("ListOptions", err, nil)
	}
	return options, nil
}

// SaveOptions writes each key independently: new keys are inserted, changed
// values are updated along with last_time, unchanged values are skipped.
// Keys are processed in sorted order and every failure is reported as
// "key: error" without stopping the batch.
func (r *SQLiteRepository) SaveOptions(ctx context.Context, capabilityID int64, remark string, values map[string]string) []string {
	start := time.Now()
	if capabilityID < 0 {
		err := repoerrors.HandleValidationError("SaveOptions", "capabilityID", fmt.Sprintf("%d", capabilityID), "must not be negative")
		return []string{err.Error()}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	failures := make([]string, 0)
	written := 0
	for _, key := range keys {
		changed, err := r.saveOption(ctx, capabilityID, remark, key, values[key])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		if changed {
			written++
		}
	}

	logging.LogRepositoryOperation(r.logger, "SaveOptions", time.Since(start), map[string]interface{}{
		"capability_id": capabilityID,
		"keys":          len(keys),
		"written":       written,
		"failed":        len(failures),
	})
	return failures
}

// saveOption reports whether the stored value changed
func (r *SQLiteRepository) saveOption(ctx context.Context, capabilityID int64, remark, key, val string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, repoerrors.HandleValidationError("SaveOptions", "key", key, "key is empty or whitespace")
	}
	errCtx := idContext(capabilityID)
	errCtx["key"] = key

	var current string
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT id, val FROM options WHERE key = ?`, key).Scan(&id, &current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, r.exec(ctx, "SaveOptions.Insert", errCtx, func() error {
			_, err := r.q.ExecContext(ctx,
				`INSERT INTO options (capability_id, key, val, remark) VALUES (?, ?, ?, ?)`,
				capabilityID, key, val, remark)
			return err
		})
	case err != nil:
		return false, repoerrors.WrapDatabaseError("SaveOptions", err, errCtx)
	case current == val:
		return false, nil
	}

	return true, r.exec(ctx, "SaveOptions.Update", errCtx, func() error {
		_, err := r.q.ExecContext(ctx,
			`UPDATE options SET val = ?, last_time = datetime('now', 'localtime') WHERE id = ?`,
			val, id)
		return err
	})
}
