package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/services"
	"deskbridge/internal/types"
)

// command runs fn as one UI command and converts its outcome to a Result.
// Every invocation is logged once under a fresh request id.
func (a *App) command(name string, fields map[string]interface{}, fn func() (interface{}, error)) types.Result {
	start := time.Now()
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields["request_id"] = uuid.NewString()

	data, err := fn()
	if err != nil {
		logging.LogCommandError(a.logger, err, name, fields)
		return types.FromError(err)
	}
	logging.LogCommand(a.logger, name, time.Since(start), fields)
	return types.Success("", data)
}

func (a *App) storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(a.ctx, storageTimeout)
}

// Greet returns a greeting for the given name
func (a *App) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// ClassifyPaths splits paths into existing files and folders. It never fails.
func (a *App) ClassifyPaths(paths []string) types.Result {
	return a.command("ClassifyPaths", map[string]interface{}{"paths": len(paths)}, func() (interface{}, error) {
		return services.ClassifyPaths(paths), nil
	})
}

// GetActiveSelection returns the paths selected in the focused file browser window
func (a *App) GetActiveSelection() types.Result {
	return a.command("GetActiveSelection", nil, func() (interface{}, error) {
		return a.selection.ActiveSelection()
	})
}

// SendHTTPRequest performs a JSON API request and returns {"data": <body>}
func (a *App) SendHTTPRequest(req types.APIRequest) types.Result {
	fields := map[string]interface{}{"method": req.Method, "url": req.URL}
	return a.command("SendHTTPRequest", fields, func() (interface{}, error) {
		return a.requester.Send(a.ctx, req)
	})
}

// RecordRecent marks a capability as just used
func (a *App) RecordRecent(capabilityID int64) types.Result {
	return a.command("RecordRecent", map[string]interface{}{"capability_id": capabilityID}, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return nil, a.capabilities.RecordRecent(ctx, capabilityID)
	})
}

// ListRecent returns up to limit recently used capability ids, newest first
func (a *App) ListRecent(limit int) types.Result {
	return a.command("ListRecent", map[string]interface{}{"limit": limit}, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return a.capabilities.ListRecent(ctx, limit)
	})
}

// StarCapability stars a capability
func (a *App) StarCapability(capabilityID int64) types.Result {
	return a.command("StarCapability", map[string]interface{}{"capability_id": capabilityID}, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return nil, a.capabilities.Star(ctx, capabilityID)
	})
}

// UnstarCapability removes a capability's star
func (a *App) UnstarCapability(capabilityID int64) types.Result {
	return a.command("UnstarCapability", map[string]interface{}{"capability_id": capabilityID}, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return nil, a.capabilities.Unstar(ctx, capabilityID)
	})
}

// ListStarred returns up to limit starred capability ids, newest first
func (a *App) ListStarred(limit int) types.Result {
	return a.command("ListStarred", map[string]interface{}{"limit": limit}, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return a.capabilities.ListStarred(ctx, limit)
	})
}

// ListShortcuts returns every bound shortcut
func (a *App) ListShortcuts() types.Result {
	return a.command("ListShortcuts", nil, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return a.capabilities.ListShortcuts(ctx)
	})
}

// SaveShortcut binds key to a capability and returns the stored shortcut
func (a *App) SaveShortcut(capabilityID int64, key string) types.Result {
	fields := map[string]interface{}{"capability_id": capabilityID, "key": key}
	return a.command("SaveShortcut", fields, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return a.capabilities.SaveShortcut(ctx, capabilityID, key)
	})
}

// ListOptions returns every stored option
func (a *App) ListOptions() types.Result {
	return a.command("ListOptions", nil, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return a.capabilities.ListOptions(ctx)
	})
}

// SaveOptions writes values for a capability. The data holds the keys that
// failed; the command still succeeds when only some keys fail.
func (a *App) SaveOptions(capabilityID int64, remark string, values map[string]string) types.Result {
	fields := map[string]interface{}{"capability_id": capabilityID, "keys": len(values)}
	return a.command("SaveOptions", fields, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		return a.capabilities.SaveOptions(ctx, capabilityID, remark, values)
	})
}

// GetStorageStatus checks the capability database and reports its schema
// version and connection pool usage
func (a *App) GetStorageStatus() types.Result {
	return a.command("GetStorageStatus", nil, func() (interface{}, error) {
		ctx, cancel := a.storageContext()
		defer cancel()
		if err := a.capabilities.HealthCheck(ctx); err != nil {
			return nil, err
		}

		var status types.StorageStatus
		if a.dbService == nil || a.dbService.DB() == nil {
			return status, nil
		}
		version, err := a.dbService.GetMigrationVersion(ctx)
		if err != nil {
			return nil, err
		}
		stats := a.dbService.GetStats()
		status.SchemaVersion = version
		status.OpenConnections = stats.OpenConnections
		status.InUse = stats.InUse
		return status, nil
	})
}
