package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dberrors "deskbridge/internal/infrastructure/errors"
	"deskbridge/internal/testutils"
)

func connectTest(t *testing.T) *SQLiteService {
	t.Helper()
	service := NewSQLiteService(&testutils.RecordingLogger{})
	if err := service.Connect(context.Background(), TestConfig()); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service
}

func TestSQLiteService_Connect(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	config := DefaultConfig()
	config.Path = dbPath

	service := NewSQLiteService(&testutils.RecordingLogger{})
	ctx := context.Background()

	if err := service.Connect(ctx, config); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer service.Close()

	if err := service.Health(ctx); err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("Database file was not created: %s", dbPath)
	}
	if got := service.GetStats().MaxOpenConnections; got != 4 {
		t.Errorf("MaxOpenConnections = %d, want 4 in WAL mode", got)
	}
}

func TestSQLiteService_ConnectInvalidConfig(t *testing.T) {
	t.Parallel()
	config := TestConfig()
	config.JournalMode = "BOGUS"

	service := NewSQLiteService(&testutils.RecordingLogger{})
	err := service.Connect(context.Background(), config)
	if !dberrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if service.DB() != nil {
		t.Error("DB should stay nil after a failed connect")
	}
}

func TestSQLiteService_Migrate(t *testing.T) {
	t.Parallel()
	service := connectTest(t)
	ctx := context.Background()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	for _, table := range []string{"recently", "star", "shortcut", "options"} {
		var n int
		if err := service.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("%s table was not created: %v", table, err)
		}
	}

	version, err := service.GetMigrationVersion(ctx)
	if err != nil {
		t.Fatalf("GetMigrationVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	// a second run has nothing left to apply
	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestSQLiteService_NotConnected(t *testing.T) {
	t.Parallel()
	service := NewSQLiteService(&testutils.RecordingLogger{})
	ctx := context.Background()

	checks := map[string]error{
		"Health":   service.Health(ctx),
		"Migrate":  service.Migrate(ctx),
		"Optimize": service.Optimize(ctx),
	}
	for name, err := range checks {
		if dberrors.CodeOf(err) != dberrors.ErrCodeConnection {
			t.Errorf("%s: expected connection error, got %v", name, err)
		}
	}
	if _, err := service.GetMigrationVersion(ctx); dberrors.CodeOf(err) != dberrors.ErrCodeConnection {
		t.Errorf("GetMigrationVersion: expected connection error, got %v", err)
	}
	if err := service.Close(); err != nil {
		t.Errorf("Close on an unconnected service should be a no-op, got %v", err)
	}
	if stats := service.GetStats(); stats.OpenConnections != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSQLiteService_SingleConnectionMode(t *testing.T) {
	t.Parallel()
	service := connectTest(t)
	if got := service.GetStats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestSQLiteService_Optimize(t *testing.T) {
	t.Parallel()
	service := connectTest(t)
	ctx := context.Background()
	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := service.Optimize(ctx); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
}

func TestSQLiteService_Reconnect(t *testing.T) {
	t.Parallel()
	service := connectTest(t)
	first := service.DB()

	if err := service.Connect(context.Background(), TestConfig()); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if service.DB() == first {
		t.Error("reconnect should replace the connection")
	}
	if err := first.Ping(); err == nil {
		t.Error("previous connection should be closed")
	}
}
