package repository

import (
	"context"
	"database/sql"

	"zeitig/internal/types"
)

// Store is the persistence boundary of the tracker. Implementations are not
// required to be safe for concurrent use; the backend worker is their only
// caller while it runs.
type Store interface {
	// Setup creates the schema on first use and is a no-op afterwards
	Setup(ctx context.Context) error

	// Catalog. Ids are assigned by the store and increase with every call.
	CreateAction(ctx context.Context, name string) (types.Action, error)
	CreateSubject(ctx context.Context, name string) (types.Subject, error)

	// UpdateTime sets the total of topic. It is an absolute value, not an increment.
	UpdateTime(ctx context.Context, topic types.Topic, spent types.SpentTime) error
	// AddSession inserts a history row. Topics referencing a missing action
	// or subject are rejected.
	AddSession(ctx context.Context, session types.Session) error
	// CommitSession inserts session and adds elapsed to the stored total of
	// its topic in one transaction, returning the new total.
	CommitSession(ctx context.Context, session types.Session, elapsed types.SpentTime) (types.SpentTime, error)

	LoadContent(ctx context.Context) (*types.Content, error)
	LoadHistory(ctx context.Context, content *types.Content) (*types.History, error)

	// Bulk imports; each call is atomic.
	TransferContent(ctx context.Context, content *types.Content) error
	TransferHistory(ctx context.Context, history *types.History) error

	Close() error
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)
