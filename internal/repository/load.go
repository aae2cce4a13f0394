package repository

import (
	"context"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/types"
)

// LoadContent reads the catalog and the time table
func (s *SQLiteStore) LoadContent(ctx context.Context) (*types.Content, error) {
	content := types.NewContent()

	err := s.run(ctx, "LoadContent", nil, func() error {
		content = types.NewContent()

		actions, err := s.q.QueryContext(ctx, `SELECT id, name FROM Actions ORDER BY id`)
		if err != nil {
			return err
		}
		defer actions.Close()
		for actions.Next() {
			var a types.Action
			if err := actions.Scan(&a.ID, &a.Name); err != nil {
				return err
			}
			content.InsertAction(a)
		}
		if err := actions.Err(); err != nil {
			return err
		}

		subjects, err := s.q.QueryContext(ctx, `SELECT id, name FROM Subjects ORDER BY id`)
		if err != nil {
			return err
		}
		defer subjects.Close()
		for subjects.Next() {
			var sub types.Subject
			if err := subjects.Scan(&sub.ID, &sub.Name); err != nil {
				return err
			}
			content.InsertSubject(sub)
		}
		if err := subjects.Err(); err != nil {
			return err
		}

		rows, err := s.q.QueryContext(ctx, `SELECT action, subject, duration FROM TimeTable`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var actionID, subjectID, seconds int64
			if err := rows.Scan(&actionID, &subjectID, &seconds); err != nil {
				return err
			}
			topic, err := resolveTopic("LoadContent", content, actionID, subjectID, "time table")
			if err != nil {
				return err
			}
			*content.TimeTable.GetMut(topic) = types.Seconds(seconds)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded content",
		"actions", len(content.Actions),
		"subjects", len(content.Subjects),
		"time_entries", content.TimeTable.Len())
	return content, nil
}

// LoadHistory reads every session in insertion order, resolving topics
// against content. A session referencing an unknown id fails the load.
func (s *SQLiteStore) LoadHistory(ctx context.Context, content *types.Content) (*types.History, error) {
	if content == nil {
		return nil, repoerrors.HandleValidationError("LoadHistory", "content", "nil", "content must be loaded first")
	}

	var history *types.History
	err := s.run(ctx, "LoadHistory", nil, func() error {
		history = types.NewHistory()

		rows, err := s.q.QueryContext(ctx, `SELECT started, ended, action, subject FROM History ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var started, ended string
			var actionID, subjectID int64
			if err := rows.Scan(&started, &ended, &actionID, &subjectID); err != nil {
				return err
			}

			topic, err := resolveTopic("LoadHistory", content, actionID, subjectID, "history")
			if err != nil {
				return err
			}
			session := types.Session{Topic: topic}
			if session.Started, err = parseTime("LoadHistory", "started", started); err != nil {
				return err
			}
			if session.Ended, err = parseTime("LoadHistory", "ended", ended); err != nil {
				return err
			}
			history.Append(session)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded history", "sessions", history.Len())
	return history, nil
}

func resolveTopic(op string, content *types.Content, actionID, subjectID int64, owner string) (types.Topic, error) {
	action, ok := content.FindAction(actionID)
	if !ok {
		return types.Topic{}, repoerrors.HandleReferentialIntegrityError(op, "action", actionID, owner)
	}
	subject, ok := content.FindSubject(subjectID)
	if !ok {
		return types.Topic{}, repoerrors.HandleReferentialIntegrityError(op, "subject", subjectID, owner)
	}
	return types.Topic{Action: action, Subject: subject}, nil
}
