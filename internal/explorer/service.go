package explorer

import (
	"time"

	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/platform"
)

// Service answers "which files are selected in the focused file browser"
type Service struct {
	windows   platform.WindowAPI
	runtime   platform.Automation
	apartment *Apartment
	policy    CastPolicy
	logger    logging.Logger
}

// NewService creates a selection service with its own apartment worker
func NewService(windows platform.WindowAPI, rt platform.Automation, policy CastPolicy, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Service{
		windows:   windows,
		runtime:   rt,
		apartment: NewApartment(),
		policy:    policy,
		logger:    logger,
	}
}

// ActiveSelection returns the absolute paths selected in the foreground shell
// window. An empty selection is a success with an empty slice.
func (s *Service) ActiveSelection() ([]string, error) {
	start := time.Now()

	target := s.windows.ForegroundWindow()
	if target.IsZero() {
		return nil, newError(KindForeground, "failed to get foreground window", nil)
	}

	var paths []string
	err := s.apartment.Do(func() error {
		var err error
		paths, err = WithScope(s.runtime, func() ([]string, error) {
			return s.query(target)
		})
		return err
	})
	if err != nil {
		fields := []interface{}{"kind", KindOf(err).String(), "policy", s.policy.String()}
		if info := s.windows.ForegroundAppInfo(); info != nil {
			fields = append(fields, "foreground_app", info.Name)
		}
		s.logger.Debug("Selection query failed", append(fields, "error", err.Error())...)
		return nil, err
	}

	s.logger.Debug("Selection query completed",
		"count", len(paths),
		"duration", time.Since(start).String())
	return paths, nil
}

// query runs inside an open runtime scope. Deferred releases run before the
// scope tears the runtime down.
func (s *Service) query(target platform.Handle) ([]string, error) {
	collection, err := CreateWindowCollection(s.runtime)
	if err != nil {
		return nil, err
	}
	defer collection.Release()

	browser, err := FindActiveWindow(collection, target, s.policy)
	if err != nil {
		return nil, err
	}
	defer browser.Release()

	view, err := ResolveFolderView(browser)
	if err != nil {
		return nil, err
	}
	defer view.Release()

	return ExtractSelectedPaths(view)
}

// Close stops the apartment worker
func (s *Service) Close() {
	s.apartment.Close()
}
