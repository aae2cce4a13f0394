package backend

import (
	"github.com/google/uuid"

	"zeitig/internal/types"
)

// Command is a request processed by the worker
type Command interface {
	commandName() string
}

// AddAction creates an action in the store
type AddAction struct {
	Name string
}

// AddSubject creates a subject in the store
type AddSubject struct {
	Name string
}

// CommitSession stores a finished session and adds Elapsed to its topic total
type CommitSession struct {
	Session types.Session
	Elapsed types.SpentTime
}

// Stop ends the worker loop once every command submitted before it is done
type Stop struct{}

func (AddAction) commandName() string     { return "AddAction" }
func (AddSubject) commandName() string    { return "AddSubject" }
func (CommitSession) commandName() string { return "CommitSession" }
func (Stop) commandName() string          { return "Stop" }

type envelope struct {
	id  uuid.UUID
	cmd Command
}
