package services

import (
	"context"

	"deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/repository"
	"deskbridge/internal/types"
)

// CapabilityService fronts capability storage for the UI commands. Without a
// repository every call fails with an unavailable error and the rest of the
// application keeps working.
type CapabilityService struct {
	repository repository.CapabilityRepository
	logger     logging.Logger
}

// NewCapabilityService creates the service. repo may be nil when storage
// failed to open.
func NewCapabilityService(repo repository.CapabilityRepository, logger logging.Logger) *CapabilityService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if repo == nil {
		logger.Warn("Capability storage unavailable, running without persistence")
	}
	return &CapabilityService{repository: repo, logger: logger}
}

// Available reports whether storage is open
func (s *CapabilityService) Available() bool {
	return s.repository != nil
}

func (s *CapabilityService) RecordRecent(ctx context.Context, capabilityID int64) error {
	if s.repository == nil {
		return errors.HandleUnavailable("RecordRecent")
	}
	return s.repository.RecordRecent(ctx, capabilityID)
}

func (s *CapabilityService) ListRecent(ctx context.Context, limit int) ([]int64, error) {
	if s.repository == nil {
		return nil, errors.HandleUnavailable("ListRecent")
	}
	return s.repository.ListRecent(ctx, limit)
}

func (s *CapabilityService) Star(ctx context.Context, capabilityID int64) error {
	if s.repository == nil {
		return errors.HandleUnavailable("Star")
	}
	return s.repository.AddStar(ctx, capabilityID)
}

// Unstar removes a star. Unstarring a capability that is not starred succeeds.
func (s *CapabilityService) Unstar(ctx context.Context, capabilityID int64) error {
	if s.repository == nil {
		return errors.HandleUnavailable("Unstar")
	}
	err := s.repository.RemoveStar(ctx, capabilityID)
	if errors.IsNotFound(err) {
		s.logger.Debug("Capability was not starred", "capability_id", capabilityID)
		return nil
	}
	return err
}

func (s *CapabilityService) ListStarred(ctx context.Context, limit int) ([]int64, error) {
	if s.repository == nil {
		return nil, errors.HandleUnavailable("ListStarred")
	}
	return s.repository.ListStarred(ctx, limit)
}

func (s *CapabilityService) ListShortcuts(ctx context.Context) ([]types.Shortcut, error) {
	if s.repository == nil {
		return nil, errors.HandleUnavailable("ListShortcuts")
	}
	return s.repository.ListShortcuts(ctx)
}

func (s *CapabilityService) SaveShortcut(ctx context.Context, capabilityID int64, key string) (*types.Shortcut, error) {
	if s.repository == nil {
		return nil, errors.HandleUnavailable("SaveShortcut")
	}
	return s.repository.SaveShortcut(ctx, capabilityID, key)
}

func (s *CapabilityService) ListOptions(ctx context.Context) ([]types.Option, error) {
	if s.repository == nil {
		return nil, errors.HandleUnavailable("ListOptions")
	}
	return s.repository.ListOptions(ctx)
}

// SaveOptions returns the per-key failures. A non-nil error means nothing was
// attempted.
func (s *CapabilityService) SaveOptions(ctx context.Context, capabilityID int64, remark string, values map[string]string) ([]string, error) {
	if s.repository == nil {
		return nil, errors.HandleUnavailable("SaveOptions")
	}
	failures := s.repository.SaveOptions(ctx, capabilityID, remark, values)
	if len(failures) > 0 {
		s.logger.Warn("Some options failed to save", "failed", len(failures), "total", len(values))
	}
	return failures, nil
}

// HealthCheck returns the storage health, or an unavailable error
func (s *CapabilityService) HealthCheck(ctx context.Context) error {
	if s.repository == nil {
		return errors.HandleUnavailable("HealthCheck")
	}
	return s.repository.HealthCheck(ctx)
}
