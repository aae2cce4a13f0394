package database

import (
	"context"
	"database/sql"
)

// Service manages the single SQLite connection pool and its schema
type Service interface {
	Connect(ctx context.Context, config *Config) error
	Close() error
	Health(ctx context.Context) error

	DB() *sql.DB
	Config() *Config

	// Setup creates the schema on an empty database and leaves an
	// existing one untouched. An unrecognized schema version is logged,
	// never migrated.
	Setup(ctx context.Context) error
	SchemaVersion(ctx context.Context) (string, bool, error)
}

// MigrationManager applies the embedded schema migrations
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	GetCurrentVersion(ctx context.Context) (int64, error)
	ValidateMigrations() error
}
