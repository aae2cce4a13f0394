package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/types"
)

// History timestamps keep the offset they were recorded with
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func parseTime(op, column, value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, repoerrors.NewRepositoryErrorWithContext(op,
			fmt.Errorf("invalid %s timestamp %q: %w", column, value, err),
			repoerrors.ErrCodeCorruption, map[string]string{"column": column})
	}
	return t, nil
}

// noRetry is used by transaction scoped stores; the enclosing transaction
// is retried as a whole.
var noRetry = &repoerrors.RetryConfig{MaxAttempts: 1}

// wrapError classifies err unless it already is a store error
func (s *SQLiteStore) wrapError(op string, err error, details map[string]string) *repoerrors.RepositoryError {
	var repoErr *repoerrors.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr
	}
	return repoerrors.NewRepositoryErrorWithContext(op, err, repoerrors.ClassifyError(err), details)
}

// run executes fn with the store retry policy. Failures are classified and
// logged; retryable ones only at debug level while attempts remain.
func (s *SQLiteStore) run(ctx context.Context, op string, details map[string]string, fn func() error) error {
	start := time.Now()

	err := repoerrors.WithRetryContext(ctx, s.retryConfig, func() error {
		if err := fn(); err != nil {
			repoErr := s.wrapError(op, err, details)
			if repoErr.IsRetryable() {
				s.logger.Debug("Retryable error in "+op, "error", err)
			}
			return repoErr
		}
		return nil
	}, op)
	if err != nil {
		if !s.inTx {
			logging.LogError(s.logger, err, op, nil)
		}
		return err
	}

	fields := make(map[string]any, len(details))
	for k, v := range details {
		fields[k] = v
	}
	logging.LogOperation(s.logger, op, time.Since(start), fields)
	return nil
}

// ensureReferenced checks that both ids of topic exist in the store.
// owner names the table that would hold the reference.
func (s *SQLiteStore) ensureReferenced(ctx context.Context, op string, topic types.Topic, owner string) error {
	checks := []struct {
		resource string
		query    string
		id       int64
	}{
		{"action", `SELECT EXISTS(SELECT 1 FROM Actions WHERE id = ?)`, topic.Action.ID},
		{"subject", `SELECT EXISTS(SELECT 1 FROM Subjects WHERE id = ?)`, topic.Subject.ID},
	}

	for _, c := range checks {
		var exists bool
		if err := s.q.QueryRowContext(ctx, c.query, c.id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repoerrors.HandleReferentialIntegrityError(op, c.resource, c.id, owner)
		}
	}
	return nil
}

func topicDetails(topic types.Topic) map[string]string {
	return map[string]string{
		"action":  fmt.Sprint(topic.Action.ID),
		"subject": fmt.Sprint(topic.Subject.ID),
	}
}
