package repository

import (
	"context"
	"strings"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/types"
)

// CreateAction inserts an action and returns it with its new id
func (s *SQLiteStore) CreateAction(ctx context.Context, name string) (types.Action, error) {
	id, err := s.insertNamed(ctx, "CreateAction", `INSERT INTO Actions (name) VALUES (?)`, name)
	if err != nil {
		return types.Action{}, err
	}
	return types.Action{ID: id, Name: name}, nil
}

// CreateSubject inserts a subject and returns it with its new id
func (s *SQLiteStore) CreateSubject(ctx context.Context, name string) (types.Subject, error) {
	id, err := s.insertNamed(ctx, "CreateSubject", `INSERT INTO Subjects (name) VALUES (?)`, name)
	if err != nil {
		return types.Subject{}, err
	}
	return types.Subject{ID: id, Name: name}, nil
}

func (s *SQLiteStore) insertNamed(ctx context.Context, op, query, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, repoerrors.HandleValidationError(op, "name", name, "name cannot be empty")
	}

	var id int64
	err := s.run(ctx, op, map[string]string{"name": name}, func() error {
		res, err := s.q.ExecContext(ctx, query, name)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// insertAction keeps the id of a transferred action
func (s *SQLiteStore) insertAction(ctx context.Context, a types.Action) error {
	return s.run(ctx, "TransferContent.Action", map[string]string{"name": a.Name}, func() error {
		_, err := s.q.ExecContext(ctx, `INSERT INTO Actions (id, name) VALUES (?, ?)`, a.ID, a.Name)
		return err
	})
}

// insertSubject keeps the id of a transferred subject
func (s *SQLiteStore) insertSubject(ctx context.Context, sub types.Subject) error {
	return s.run(ctx, "TransferContent.Subject", map[string]string{"name": sub.Name}, func() error {
		_, err := s.q.ExecContext(ctx, `INSERT INTO Subjects (id, name) VALUES (?, ?)`, sub.ID, sub.Name)
		return err
	})
}
