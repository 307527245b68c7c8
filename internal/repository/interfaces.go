package repository

import (
	"context"

	"deskbridge/internal/types"
)

// CapabilityRepository persists per-capability UI state: recent use,
// starred capabilities, global shortcuts and options.
type CapabilityRepository interface {
	// Recent use, newest first
	RecordRecent(ctx context.Context, capabilityID int64) error
	ListRecent(ctx context.Context, limit int) ([]int64, error)

	// Stars. Starring twice is a no-op.
	AddStar(ctx context.Context, capabilityID int64) error
	RemoveStar(ctx context.Context, capabilityID int64) error
	ListStarred(ctx context.Context, limit int) ([]int64, error)

	// Shortcuts. One key per capability, one capability per key.
	ListShortcuts(ctx context.Context) ([]types.Shortcut, error)
	SaveShortcut(ctx context.Context, capabilityID int64, key string) (*types.Shortcut, error)

	// Options. SaveOptions returns one message per key that failed; the
	// remaining keys are still written.
	ListOptions(ctx context.Context) ([]types.Option, error)
	SaveOptions(ctx context.Context, capabilityID int64, remark string, values map[string]string) []string

	HealthCheck(ctx context.Context) error
}
