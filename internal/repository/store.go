package repository

import (
	"context"
	"database/sql"

	"zeitig/internal/database"
	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
)

// SQLiteStore implements Store on top of a database.Service
type SQLiteStore struct {
	db          *sql.DB
	q           querier
	inTx        bool
	dbService   database.Service
	retryConfig *repoerrors.RetryConfig
	logger      logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store using the connection of dbService
func NewSQLiteStore(dbService database.Service, logger logging.Logger) *SQLiteStore {
	return NewSQLiteStoreWithConfig(dbService, nil, logger)
}

// NewSQLiteStoreWithConfig creates a store with a custom retry policy
func NewSQLiteStoreWithConfig(dbService database.Service, retryConfig *repoerrors.RetryConfig, logger logging.Logger) *SQLiteStore {
	if retryConfig == nil {
		retryConfig = repoerrors.DefaultRetryConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	db := dbService.DB()
	return &SQLiteStore{
		db:          db,
		q:           db,
		dbService:   dbService,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// Setup delegates schema creation and version checks to the database service
func (s *SQLiteStore) Setup(ctx context.Context) error {
	return s.dbService.Setup(ctx)
}

// Close closes the underlying connection
func (s *SQLiteStore) Close() error {
	if s.inTx {
		return repoerrors.HandleValidationError("Close", "store", "transaction", "cannot close a transaction scoped store")
	}
	return s.dbService.Close()
}
