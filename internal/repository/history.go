package repository

import (
	"context"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/types"
)

// AddSession appends session to the stored history
func (s *SQLiteStore) AddSession(ctx context.Context, session types.Session) error {
	if session.Ended.Before(session.Started) {
		return repoerrors.HandleValidationError("AddSession", "ended", formatTime(session.Ended), "session ends before it starts")
	}

	return s.run(ctx, "AddSession", topicDetails(session.Topic), func() error {
		if err := s.ensureReferenced(ctx, "AddSession", session.Topic, "history"); err != nil {
			return err
		}
		_, err := s.q.ExecContext(ctx,
			`INSERT INTO History (started, ended, action, subject) VALUES (?, ?, ?, ?)`,
			formatTime(session.Started), formatTime(session.Ended),
			session.Topic.Action.ID, session.Topic.Subject.ID)
		return err
	})
}

// CommitSession records a finished session and adds elapsed to the stored
// total of its topic. Both writes share one transaction so concurrent
// commits for the same topic cannot lose time.
func (s *SQLiteStore) CommitSession(ctx context.Context, session types.Session, elapsed types.SpentTime) (types.SpentTime, error) {
	var total types.SpentTime
	err := s.WithTransaction(ctx, func(tx *SQLiteStore) error {
		if err := tx.AddSession(ctx, session); err != nil {
			return err
		}
		previous, err := tx.storedTime(ctx, session.Topic)
		if err != nil {
			return err
		}
		total = previous.Add(elapsed)
		return tx.UpdateTime(ctx, session.Topic, total)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
