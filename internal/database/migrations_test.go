package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"zeitig/internal/infrastructure/logging"
)

func TestMigrationRunner_RunMigrations(t *testing.T) {
	db, err := sql.Open(DriverCGO, filepath.Join(t.TempDir(), "m.db")+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := NewMigrationRunner(db, logging.NopLogger{})

	if err := runner.ValidateMigrations(); err != nil {
		t.Fatalf("ValidateMigrations: %v", err)
	}
	if err := runner.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil || version != 1 {
		t.Fatalf("version=%d err=%v", version, err)
	}

	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM Meta WHERE key = 'version'`).Scan(&value); err != nil || value != SchemaVersion {
		t.Fatalf("Meta.version=%q err=%v", value, err)
	}
}

func TestMigrationRunner_NilDB(t *testing.T) {
	runner := NewMigrationRunner(nil, nil)

	if err := runner.RunMigrations(context.Background()); err == nil {
		t.Error("expected an error for a nil database")
	}
	if _, err := runner.GetCurrentVersion(context.Background()); err == nil {
		t.Error("expected an error for a nil database")
	}
}
