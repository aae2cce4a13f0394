package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
)

// WithTransaction runs fn inside one database transaction. The store passed
// to fn issues every statement on that transaction; returning an error rolls
// everything back. Busy and connection failures retry the whole transaction.
func (s *SQLiteStore) WithTransaction(ctx context.Context, fn func(tx *SQLiteStore) error) error {
	if s.inTx {
		return fn(s)
	}

	start := time.Now()

	err := repoerrors.WithRetryContext(ctx, s.retryConfig, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			repoErr := repoerrors.NewRepositoryError("WithTransaction.Begin", err, repoerrors.ClassifyError(err))
			if repoErr.IsRetryable() {
				s.logger.Debug("Retryable error beginning transaction", "error", err)
			} else {
				logging.LogError(s.logger, repoErr, "WithTransaction.Begin", nil)
			}
			return repoErr
		}

		var originalErr error
		var committed bool
		defer func() {
			if committed {
				return
			}
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.Debug("Failed to rollback transaction",
					"rollback_error", rollbackErr,
					"original_error", originalErr)
			}
		}()

		txStore := &SQLiteStore{
			db:          s.db,
			q:           tx,
			inTx:        true,
			dbService:   s.dbService,
			retryConfig: noRetry,
			logger:      s.logger,
		}

		if err := fn(txStore); err != nil {
			// fn returns store errors already classified
			originalErr = err
			s.logger.Debug("Transaction function failed", "error", err)
			return err
		}

		if err := tx.Commit(); err != nil {
			originalErr = err
			repoErr := repoerrors.NewRepositoryError("WithTransaction.Commit", err, repoerrors.ClassifyError(err))
			if repoErr.IsRetryable() {
				s.logger.Debug("Retryable error committing transaction", "error", err)
			} else {
				logging.LogError(s.logger, repoErr, "WithTransaction.Commit", nil)
			}
			return repoErr
		}
		committed = true
		return nil
	}, "WithTransaction")

	if err == nil {
		logging.LogOperation(s.logger, "WithTransaction", time.Since(start), nil)
	}
	return err
}
