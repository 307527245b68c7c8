package repository

import (
	"context"

	repoerrors "deskbridge/internal/infrastructure/errors"
)

// AddStar stars a capability. Starring an already starred capability is a no-op.
func (r *SQLiteRepository) AddStar(ctx context.Context, capabilityID int64) error {
	if err := validateCapabilityID("AddStar", capabilityID); err != nil {
		return err
	}
	return r.exec(ctx, "AddStar", idContext(capabilityID), func() error {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO star (capability_id) VALUES (?) ON CONFLICT(capability_id) DO NOTHING`,
			capabilityID)
		return err
	})
}

// RemoveStar unstars a capability. Returns a not found error if it was not starred.
func (r *SQLiteRepository) RemoveStar(ctx context.Context, capabilityID int64) error {
	if err := validateCapabilityID("RemoveStar", capabilityID); err != nil {
		return err
	}

	var affected int64
	err := r.exec(ctx, "RemoveStar", idContext(capabilityID), func() error {
		res, err := r.q.ExecContext(ctx, `DELETE FROM star WHERE capability_id = ?`, capabilityID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return repoerrors.HandleNotFound("RemoveStar", "star", idContext(capabilityID)["capability_id"])
	}
	return nil
}

// ListStarred returns up to limit starred capability ids, newest first
func (r *SQLiteRepository) ListStarred(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT capability_id FROM star ORDER BY create_time DESC, id DESC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("ListStarred", err, nil)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("ListStarred", err, nil)
	}
	return ids, nil
}
