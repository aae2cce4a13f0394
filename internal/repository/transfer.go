package repository

import (
	"context"
	"errors"
	"fmt"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/types"
)

// TransferContent imports a whole catalog in one transaction. Actions and
// subjects keep their ids, so they must be non-zero and unused.
func (s *SQLiteStore) TransferContent(ctx context.Context, content *types.Content) error {
	if content == nil {
		return repoerrors.HandleValidationError("TransferContent", "content", "nil", "content cannot be nil")
	}
	for _, a := range content.Actions {
		if a.ID == 0 {
			return repoerrors.HandleValidationError("TransferContent", "action", a.Name, "transferred actions need an id")
		}
	}
	for _, sub := range content.Subjects {
		if sub.ID == 0 {
			return repoerrors.HandleValidationError("TransferContent", "subject", sub.Name, "transferred subjects need an id")
		}
	}

	err := s.WithTransaction(ctx, func(tx *SQLiteStore) error {
		for _, a := range content.Actions {
			if err := tx.insertAction(ctx, a); err != nil {
				return err
			}
		}
		for _, sub := range content.Subjects {
			if err := tx.insertSubject(ctx, sub); err != nil {
				return err
			}
		}
		for _, entry := range content.TimeTable.Entries() {
			if err := tx.UpdateTime(ctx, entry.Topic, entry.Spent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Transferred content",
		"actions", len(content.Actions),
		"subjects", len(content.Subjects),
		"time_entries", content.TimeTable.Len())
	return nil
}

// TransferHistory imports every session of history in one transaction
func (s *SQLiteStore) TransferHistory(ctx context.Context, history *types.History) error {
	if history == nil {
		return repoerrors.HandleValidationError("TransferHistory", "history", "nil", "history cannot be nil")
	}

	err := s.WithTransaction(ctx, func(tx *SQLiteStore) error {
		i := 0
		for session := range history.All() {
			if err := tx.AddSession(ctx, session); err != nil {
				var repoErr *repoerrors.RepositoryError
				if errors.As(err, &repoErr) {
					repoErr.WithContext("index", fmt.Sprint(i))
				}
				return err
			}
			i++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Transferred history", "sessions", history.Len())
	return nil
}
