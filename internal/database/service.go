package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	dberrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
)

// SchemaVersion is the Meta.version value this build reads and writes
const SchemaVersion = "1"

// SQLiteService implements Service for both SQLite drivers.
//
// Lifecycle: NewSQLiteService, Connect, Setup, hand DB() to the store, Close.
type SQLiteService struct {
	db              *sql.DB
	config          *Config
	migrationRunner MigrationManager
	logger          logging.Logger
}

var _ Service = (*SQLiteService)(nil)

// NewSQLiteService creates an unconnected service
func NewSQLiteService(logger logging.Logger) *SQLiteService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteService{logger: logger}
}

// Connect opens the database described by config
func (s *SQLiteService) Connect(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return dberrors.HandleValidationError("Connect", "config", config.Path, err.Error())
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close existing database connection", "error", err)
		}
		s.db = nil
		s.migrationRunner = nil
	}

	db, err := sql.Open(config.Driver, config.GetConnectionString())
	if err != nil {
		return dberrors.HandleConnectionError("Connect", fmt.Sprintf("failed to open database: %v", err))
	}

	s.configureConnectionPool(db, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.WrapDatabaseErrorWithContext("Connect", err, map[string]string{
			"phase": "ping",
			"path":  config.Path,
		})
	}

	s.db = db
	s.config = config
	s.migrationRunner = NewMigrationRunner(db, s.logger)

	s.logger.Info("Connected to SQLite database", "path", config.Path, "driver", config.Driver)
	return nil
}

// Close releases the connection pool
func (s *SQLiteService) Close() error {
	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return dberrors.WrapDatabaseError("Close", err)
	}
	s.db = nil
	s.migrationRunner = nil

	s.logger.Info("Closed SQLite database connection")
	return nil
}

// SchemaVersion reads Meta.version. found is false when the Meta table does
// not exist, meaning the database has never been set up.
func (s *SQLiteService) SchemaVersion(ctx context.Context) (version string, found bool, err error) {
	if s.db == nil {
		return "", false, dberrors.HandleConnectionError("SchemaVersion", "database not connected")
	}

	var tables int
	err = s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'Meta'`).Scan(&tables)
	if err != nil {
		return "", false, dberrors.WrapDatabaseError("SchemaVersion", err)
	}
	if tables == 0 {
		return "", false, nil
	}

	err = s.db.QueryRowContext(ctx, `SELECT value FROM Meta WHERE key = 'version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", true, nil
	}
	if err != nil {
		return "", false, dberrors.WrapDatabaseError("SchemaVersion", err)
	}
	return version, true, nil
}

// Setup creates the schema when the database is empty. A recognized version
// is left alone; an unrecognized one is logged and startup continues.
func (s *SQLiteService) Setup(ctx context.Context) error {
	version, found, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	switch {
	case !found:
		s.logger.Info("Creating database schema", "version", SchemaVersion)
		return s.migrate(ctx)
	case version == SchemaVersion:
		s.logger.Debug("Database schema is up to date", "version", version)
		return nil
	default:
		logging.LogError(s.logger, dberrors.HandleSchemaVersionError("Setup", version, SchemaVersion), "Setup", nil)
		return nil
	}
}

func (s *SQLiteService) migrate(ctx context.Context) error {
	if s.migrationRunner == nil {
		return dberrors.HandleConnectionError("Setup", "migration runner not initialized")
	}

	if err := s.migrationRunner.ValidateMigrations(); err != nil {
		return dberrors.NewRepositoryErrorWithContext("Setup", err, dberrors.ErrCodeSchema, map[string]string{
			"phase": "validation",
		})
	}

	if err := s.migrationRunner.RunMigrations(ctx); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Setup", err, map[string]string{
			"phase": "execution",
		})
	}
	return nil
}

// Health pings the database and runs a trivial query
func (s *SQLiteService) Health(ctx context.Context) error {
	if s.db == nil {
		return dberrors.HandleConnectionError("Health", "database not connected")
	}

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Health", err, map[string]string{"phase": "query"})
	}
	if result != 1 {
		return dberrors.HandleValidationError("Health", "query_result", fmt.Sprint(result), "expected result 1")
	}
	return nil
}

// DB returns the connection pool for the store
func (s *SQLiteService) DB() *sql.DB {
	return s.db
}

// Config returns the configuration of the current connection
func (s *SQLiteService) Config() *Config {
	return s.config
}

func (s *SQLiteService) configureConnectionPool(db *sql.DB, config *Config) {
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	// In-memory databases exist per connection; without WAL concurrent
	// writers only produce lock errors.
	if config.ForceSingleConnection || config.IsInMemory() || !strings.EqualFold(config.JournalMode, "WAL") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.logger.Debug("Configured SQLite for single connection mode", "journalMode", config.JournalMode)
		return
	}

	maxConns := min(max(config.MaxConnections, 1), 4)
	idleConns := min(max(config.MaxIdleConns, 1), maxConns)
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(idleConns)
	s.logger.Debug("Configured SQLite connection pool", "maxOpenConns", maxConns, "maxIdleConns", idleConns)
}
