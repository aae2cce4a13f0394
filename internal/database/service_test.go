package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dberrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/testutils"
)

func connectTestService(t *testing.T, config *Config) *SQLiteService {
	t.Helper()
	service := NewSQLiteService(logging.NopLogger{})
	if err := service.Connect(context.Background(), config); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service
}

func TestSQLiteService_ConnectBothDrivers(t *testing.T) {
	for _, driver := range []string{DriverCGO, DriverPureGo} {
		t.Run(driver, func(t *testing.T) {
			config := DefaultConfig()
			config.Driver = driver
			config.Path = filepath.Join(t.TempDir(), "zeitig.db")

			service := connectTestService(t, config)
			if err := service.Health(context.Background()); err != nil {
				t.Fatalf("Health failed: %v", err)
			}
			if _, err := os.Stat(config.Path); err != nil {
				t.Fatalf("database file not created: %v", err)
			}
		})
	}
}

func TestSQLiteService_ConnectInvalidConfig(t *testing.T) {
	config := TestConfig()
	config.Driver = "mysql"

	err := NewSQLiteService(logging.NopLogger{}).Connect(context.Background(), config)
	if !dberrors.IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestSQLiteService_SetupCreatesSchemaOnce(t *testing.T) {
	ctx := context.Background()
	service := connectTestService(t, TestConfig())

	if _, found, err := service.SchemaVersion(ctx); err != nil || found {
		t.Fatalf("fresh database: found=%v err=%v", found, err)
	}

	for i := 0; i < 2; i++ {
		if err := service.Setup(ctx); err != nil {
			t.Fatalf("Setup #%d failed: %v", i+1, err)
		}
	}

	version, found, err := service.SchemaVersion(ctx)
	if err != nil || !found || version != SchemaVersion {
		t.Fatalf("version=%q found=%v err=%v", version, found, err)
	}

	for _, table := range []string{"Actions", "Subjects", "TimeTable", "History", "Meta"} {
		var count int
		if err := service.DB().QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestSQLiteService_SetupUnknownVersionIsLoggedOnly(t *testing.T) {
	ctx := context.Background()
	logger := &testutils.RecordingLogger{}
	service := NewSQLiteService(logger)
	if err := service.Connect(ctx, TestConfig()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer service.Close()

	if _, err := service.DB().ExecContext(ctx, `CREATE TABLE Meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO Meta (key, value) VALUES ('version', '2')`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := service.Setup(ctx); err != nil {
		t.Fatalf("Setup must not fail on an unknown version: %v", err)
	}

	var actions int
	err := service.DB().QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE name = 'Actions'`).Scan(&actions)
	if err != nil || actions != 0 {
		t.Errorf("Setup must not migrate an unknown version (actions=%d err=%v)", actions, err)
	}

	errs := logger.Calls("ERROR")
	if len(errs) != 1 {
		t.Fatalf("expected one logged error, got %+v", errs)
	}
	fields := testutils.FieldsToMap(t, errs[0].Fields)
	if fields["error_code"] != "SCHEMA_VERSION" || fields["found"] != "2" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestSQLiteService_NotConnected(t *testing.T) {
	service := NewSQLiteService(nil)

	if err := service.Health(context.Background()); !dberrors.IsConnection(err) {
		t.Errorf("Health: expected connection error, got %v", err)
	}
	if err := service.Setup(context.Background()); !dberrors.IsConnection(err) {
		t.Errorf("Setup: expected connection error, got %v", err)
	}
	if err := service.Close(); err != nil {
		t.Errorf("Close on an unconnected service must be a no-op: %v", err)
	}
}
