package backend

import (
	"fmt"

	"github.com/google/uuid"

	"zeitig/internal/types"
)

// Event reports the outcome of a command. CommandID is the id returned by
// Worker.Submit for that command.
type Event interface {
	CommandID() uuid.UUID
}

// ActionAdded is emitted once an action has been stored
type ActionAdded struct {
	ID     uuid.UUID
	Action types.Action
}

// SubjectAdded is emitted once a subject has been stored
type SubjectAdded struct {
	ID      uuid.UUID
	Subject types.Subject
}

// SessionCommitted is emitted once a session and the new topic total are stored
type SessionCommitted struct {
	ID      uuid.UUID
	Session types.Session
	Total   types.SpentTime
}

// Error is emitted when a command fails. The worker keeps running.
type Error struct {
	ID      uuid.UUID
	Message string
	Err     error
}

// Stopped is the last event of a worker
type Stopped struct {
	ID uuid.UUID
}

func (e ActionAdded) CommandID() uuid.UUID      { return e.ID }
func (e SubjectAdded) CommandID() uuid.UUID     { return e.ID }
func (e SessionCommitted) CommandID() uuid.UUID { return e.ID }
func (e Error) CommandID() uuid.UUID            { return e.ID }
func (e Stopped) CommandID() uuid.UUID          { return e.ID }

// CommandError wraps the store failure of a command
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
