package app

import (
	"context"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"deskbridge/internal/config"
	"deskbridge/internal/database"
	"deskbridge/internal/explorer"
	"deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/platform"
	"deskbridge/internal/repository"
	"deskbridge/internal/services"
	"deskbridge/internal/types"
)

const (
	// storageTimeout bounds every capability storage command
	storageTimeout = 5 * time.Second
	// shutdownTimeout bounds closing the database
	shutdownTimeout = 10 * time.Second
)

// EventPersistenceUnavailable is emitted to the UI when storage could not be opened
const EventPersistenceUnavailable = "persistence:unavailable"

// SelectionQuerier returns the paths selected in the focused file browser
type SelectionQuerier interface {
	ActiveSelection() ([]string, error)
	Close()
}

// Requester sends outbound HTTP requests for the UI
type Requester interface {
	Send(ctx context.Context, req types.APIRequest) (map[string]interface{}, error)
}

// App struct represents the main application
type App struct {
	ctx          context.Context
	cfg          *config.Config
	logger       logging.Logger
	selection    SelectionQuerier
	requester    Requester
	capabilities *services.CapabilityService
	dbService    database.Service

	// notify delivers UI events; replaced in tests because the Wails
	// runtime only works with the context Wails passes to Startup.
	notify func(ctx context.Context, event string, data ...interface{})
}

// Dependencies lets callers replace the OS-facing collaborators
type Dependencies struct {
	Selection    SelectionQuerier
	Requester    Requester
	Capabilities *services.CapabilityService
}

// NewApp creates an App wired to the native platform. Storage is opened in Startup.
func NewApp(cfg *config.Config, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	policy := explorer.AbortOnCastFailure
	if cfg.Explorer.SkipNonBrowserWindows {
		policy = explorer.SkipOnCastFailure
	}

	a := NewAppWithDependencies(cfg, logger, Dependencies{
		Selection: explorer.NewService(platform.NewWindowAPI(), platform.NewAutomation(), policy, logger),
		Requester: services.NewHTTPRequester(logger),
	})
	a.dbService = database.NewSQLiteService(logger)
	return a
}

// NewAppWithDependencies creates an App around the given collaborators. A nil
// Capabilities runs the App without persistence.
func NewAppWithDependencies(cfg *config.Config, logger logging.Logger, deps Dependencies) *App {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	capabilities := deps.Capabilities
	if capabilities == nil {
		capabilities = services.NewCapabilityService(nil, logger)
	}
	return &App{
		ctx:          context.Background(),
		cfg:          cfg,
		logger:       logger,
		selection:    deps.Selection,
		requester:    deps.Requester,
		capabilities: capabilities,
		notify:       runtime.EventsEmit,
	}
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	if a.dbService != nil {
		if err := a.initializeDatabase(ctx); err != nil {
			logging.LogRepositoryError(a.logger, err, "startup", nil)
			a.logger.Warn("Continuing without database persistence, capability state will not be saved")
			a.notify(ctx, EventPersistenceUnavailable, err.Error())
		}
	}

	a.logger.Info("Application started",
		"environment", a.cfg.Environment,
		"persistence", a.capabilities.Available())
}

// initializeDatabase connects, migrates and wires the capability repository
func (a *App) initializeDatabase(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if err := a.dbService.Connect(connectCtx, a.cfg.Database); err != nil {
		return err
	}

	if a.cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := a.dbService.Migrate(migrateCtx); err != nil {
			a.dbService.Close()
			return errors.NewRepositoryErrorWithContext("startup", err, errors.CodeOf(err), map[string]string{
				"operation": "migrate",
				"db_path":   a.cfg.Database.Path,
			})
		}
	}

	healthCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	if err := a.dbService.Health(healthCtx); err != nil {
		a.dbService.Close()
		return err
	}

	repo := repository.NewSQLiteRepository(a.dbService, a.logger)
	a.capabilities = services.NewCapabilityService(repo, a.logger)
	a.logger.Info("Database initialization completed", "db_path", a.cfg.Database.Path)
	return nil
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
	if !a.capabilities.Available() {
		a.notify(ctx, EventPersistenceUnavailable, errors.ErrPersistenceUnavailable.Error())
	}
}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Starting application shutdown sequence")

	if a.selection != nil {
		a.selection.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	a.optimizeDatabase(shutdownCtx)
	if err := a.closeDatabaseConnection(shutdownCtx); err != nil {
		logging.LogRepositoryError(a.logger, err, "shutdown", nil)
	}

	a.logger.Info("Application shutdown completed")
}

// optimizeDatabase compacts the database before it is closed. Failures only warn.
func (a *App) optimizeDatabase(ctx context.Context) {
	if a.dbService == nil || a.dbService.DB() == nil {
		return
	}
	if err := a.dbService.Optimize(ctx); err != nil {
		a.logger.Warn("Database optimization failed", "error", err)
	}
}

// closeDatabaseConnection closes the database, giving up when ctx ends
func (a *App) closeDatabaseConnection(ctx context.Context) error {
	if a.dbService == nil || a.dbService.DB() == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- a.dbService.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.NewRepositoryErrorWithContext("shutdown", err, errors.ClassifyError(err), map[string]string{
				"operation": "close_connection",
			})
		}
		a.logger.Info("Database connection closed")
		return nil
	case <-ctx.Done():
		return errors.NewRepositoryError("shutdown", fmt.Errorf("database close timed out: %w", ctx.Err()), errors.ErrCodeTimeout)
	}
}

// GetLogger returns the application's structured logger
func (a *App) GetLogger() logging.Logger {
	return a.logger
}
