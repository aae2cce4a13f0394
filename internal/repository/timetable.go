package repository

import (
	"context"
	"database/sql"
	"errors"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/types"
)

const upsertTimeQuery = `INSERT INTO TimeTable (action, subject, duration) VALUES (?, ?, ?)
ON CONFLICT (action, subject) DO UPDATE SET duration = excluded.duration`

// UpdateTime sets the stored total of topic to spent
func (s *SQLiteStore) UpdateTime(ctx context.Context, topic types.Topic, spent types.SpentTime) error {
	if spent < 0 {
		return repoerrors.HandleValidationError("UpdateTime", "spent", spent.String(), "spent time cannot be negative")
	}

	return s.run(ctx, "UpdateTime", topicDetails(topic), func() error {
		if err := s.ensureReferenced(ctx, "UpdateTime", topic, "time table"); err != nil {
			return err
		}
		_, err := s.q.ExecContext(ctx, upsertTimeQuery, topic.Action.ID, topic.Subject.ID, spent.Seconds())
		return err
	})
}

// storedTime reads the total of topic, zero when no row exists
func (s *SQLiteStore) storedTime(ctx context.Context, topic types.Topic) (types.SpentTime, error) {
	var seconds int64
	err := s.run(ctx, "StoredTime", topicDetails(topic), func() error {
		err := s.q.QueryRowContext(ctx,
			`SELECT duration FROM TimeTable WHERE action = ? AND subject = ?`,
			topic.Action.ID, topic.Subject.ID).Scan(&seconds)
		if errors.Is(err, sql.ErrNoRows) {
			seconds = 0
			return nil
		}
		return err
	})
	return types.Seconds(seconds), err
}
