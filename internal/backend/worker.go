package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/repository"
)

// ErrWorkerStopped is returned by Submit once Stop was submitted or the
// loop has exited
var ErrWorkerStopped = errors.New("worker stopped")

const defaultQueueSize = 64

// Worker owns the store between Start and its Stopped event. Commands are
// processed one at a time in submission order; each produces exactly one
// event, sent after the store call has returned.
type Worker struct {
	store    repository.Store
	sink     Sink
	logger   logging.Logger
	commands chan envelope

	mu        sync.Mutex
	closed    bool
	startOnce sync.Once
	done      chan struct{}
}

// NewWorker creates a worker. It does not touch store until Start.
func NewWorker(store repository.Store, sink Sink, logger logging.Logger) *Worker {
	return NewWorkerWithQueue(store, sink, logger, defaultQueueSize)
}

// NewWorkerWithQueue creates a worker buffering up to size commands
func NewWorkerWithQueue(store repository.Store, sink Sink, logger logging.Logger, size int) *Worker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Worker{
		store:    store,
		sink:     sink,
		logger:   logger,
		commands: make(chan envelope, max(size, 1)),
		done:     make(chan struct{}),
	}
}

// Start runs the command loop in its own goroutine. ctx is passed to every
// store call; cancelling it ends the loop without a Stopped event.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go w.run(ctx)
	})
}

// Done is closed when the loop has exited and the store is free again
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Submit queues cmd and returns the id its event will carry. It blocks
// only while the queue is full.
func (w *Worker) Submit(cmd Command) (uuid.UUID, error) {
	if cmd == nil {
		return uuid.Nil, fmt.Errorf("submit: nil command")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return uuid.Nil, ErrWorkerStopped
	}
	select {
	case <-w.done:
		w.closed = true
		return uuid.Nil, ErrWorkerStopped
	default:
	}

	env := envelope{id: uuid.New(), cmd: cmd}
	select {
	case w.commands <- env:
	case <-w.done:
		w.closed = true
		return uuid.Nil, ErrWorkerStopped
	}

	if _, ok := cmd.(Stop); ok {
		w.closed = true
	}
	return env.id, nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	w.logger.Debug("Backend worker started")
	for {
		var env envelope
		select {
		case env = <-w.commands:
		case <-ctx.Done():
			w.logger.Warn("Backend worker cancelled", "error", ctx.Err())
			return
		}

		if _, ok := env.cmd.(Stop); ok {
			if err := w.sink.Send(Stopped{ID: env.id}); err != nil {
				w.logger.Warn("Could not deliver stop event", "error", err)
			}
			w.logger.Debug("Backend worker stopped")
			return
		}

		event := w.handle(ctx, env)
		if err := w.sink.Send(event); err != nil {
			w.logger.Error("Event sink unavailable, stopping backend worker",
				"command", env.cmd.commandName(),
				"command_id", env.id.String(),
				"error", err)
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, env envelope) Event {
	var err error

	switch cmd := env.cmd.(type) {
	case AddAction:
		a, e := w.store.CreateAction(ctx, cmd.Name)
		if e == nil {
			return ActionAdded{ID: env.id, Action: a}
		}
		err = e
	case AddSubject:
		s, e := w.store.CreateSubject(ctx, cmd.Name)
		if e == nil {
			return SubjectAdded{ID: env.id, Subject: s}
		}
		err = e
	case CommitSession:
		total, e := w.store.CommitSession(ctx, cmd.Session, cmd.Elapsed)
		if e == nil {
			return SessionCommitted{ID: env.id, Session: cmd.Session, Total: total}
		}
		err = e
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}

	cmdErr := &CommandError{Command: env.cmd.commandName(), Err: err}
	logging.LogError(w.logger, err, env.cmd.commandName(), map[string]any{"command_id": env.id.String()})
	return Error{ID: env.id, Message: cmdErr.Error(), Err: cmdErr}
}
