package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"zeitig/internal/backend"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/platform"
	"zeitig/internal/snapshot"
	"zeitig/internal/types"
)

// DefaultMinSession is the longest session that is discarded on stop
const DefaultMinSession = 30 * time.Second

// Backend accepts store commands. It is implemented by backend.Worker.
type Backend interface {
	Submit(cmd backend.Command) (uuid.UUID, error)
	Done() <-chan struct{}
}

// ActivationObserver is told when a session starts and ends running
type ActivationObserver interface {
	OnActivate()
	OnDeactivate()
}

// Tracker is the in-memory view of the catalog, the time table, the
// history and the current selection. Writes that must reach the store are
// submitted to the backend; the tracker projects them locally right away
// and reconciles when the backend reports back.
type Tracker struct {
	mu        sync.RWMutex
	content   *types.Content
	history   *types.History
	setup     types.Setup
	active    *types.ActiveSession
	lastError string

	backend    Backend
	clock      platform.Clock
	observer   ActivationObserver
	minSession types.SpentTime
	logger     logging.Logger
}

// TrackerOption customizes a Tracker
type TrackerOption func(*Tracker)

// WithMinSession sets the longest session that is discarded on stop
func WithMinSession(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.minSession = types.SpentTime(d) }
}

// WithObserver registers the activation observer
func WithObserver(o ActivationObserver) TrackerOption {
	return func(t *Tracker) { t.observer = o }
}

// WithClock replaces the wall clock
func WithClock(c platform.Clock) TrackerOption {
	return func(t *Tracker) { t.clock = c }
}

// NewTracker creates a tracker over state loaded from the store
func NewTracker(content *types.Content, history *types.History, b Backend, logger logging.Logger, opts ...TrackerOption) *Tracker {
	if content == nil {
		content = types.NewContent()
	}
	if history == nil {
		history = types.NewHistory()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	t := &Tracker{
		content:    content,
		history:    history,
		backend:    b,
		clock:      platform.SystemClock{},
		minSession: types.SpentTime(DefaultMinSession),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetObserver replaces the activation observer
func (t *Tracker) SetObserver(o ActivationObserver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = o
}

// Get returns the committed total of topic; zero when nothing was recorded
func (t *Tracker) Get(topic types.Topic) types.SpentTime {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.content.TimeTable.Get(topic)
}

// GetMut returns the time table entry of topic, creating it when missing.
// The pointer must only be used by the goroutine owning the tracker.
func (t *Tracker) GetMut(topic types.Topic) *types.SpentTime {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.content.TimeTable.GetMut(topic)
}

// FindAction looks an action up by id
func (t *Tracker) FindAction(id int64) (types.Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.content.FindAction(id)
}

// FindSubject looks a subject up by id
func (t *Tracker) FindSubject(id int64) (types.Subject, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.content.FindSubject(id)
}

// Actions returns the actions ordered by name
func (t *Tracker) Actions() []types.Action {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]types.Action(nil), t.content.Actions...)
}

// Subjects returns the subjects ordered by name
func (t *Tracker) Subjects() []types.Subject {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]types.Subject(nil), t.content.Subjects...)
}

// TimeEntries returns every time table entry ordered by topic
func (t *Tracker) TimeEntries() []types.TimeEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.content.TimeTable.Entries()
}

// History returns a copy of the session history
func (t *Tracker) History() *types.History {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return types.NewHistory(t.history.Sessions()...)
}

// Setup returns the current selection and dialog state
func (t *Tracker) Setup() types.Setup {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.setup
}

// Active returns the running session
func (t *Tracker) Active() (types.ActiveSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.active == nil {
		return types.ActiveSession{}, false
	}
	return *t.active, true
}

// LastError returns the message of the last failed backend command
func (t *Tracker) LastError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastError
}

// CurrentSessionDuration is the committed total of the selected topic plus
// the time of the running session. It never changes the time table.
func (t *Tracker) CurrentSessionDuration() types.SpentTime {
	t.mu.RLock()
	defer t.mu.RUnlock()

	topic, ok := t.setup.Topic()
	if !ok {
		return 0
	}
	total := t.content.TimeTable.Get(topic)
	if t.active != nil {
		total = total.Add(t.active.Duration)
	}
	return total
}

// Apply folds a backend event into the state
func (t *Tracker) Apply(event backend.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := event.(type) {
	case backend.ActionAdded:
		t.content.InsertAction(ev.Action)
	case backend.SubjectAdded:
		t.content.InsertSubject(ev.Subject)
	case backend.SessionCommitted:
		// the store total wins over the local projection
		*t.content.TimeTable.GetMut(ev.Session.Topic) = ev.Total
	case backend.Error:
		t.lastError = ev.Message
		t.logger.Warn("Backend command failed", "command_id", ev.ID.String(), "message", ev.Message)
	case backend.Stopped:
		t.logger.Debug("Backend stopped", "command_id", ev.ID.String())
	}
}

// Snapshot captures the catalog, the time table and the history
func (t *Tracker) Snapshot() *snapshot.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshot.FromState(t.content, t.history)
}

// Shutdown commits a running session, stops the backend and waits until it
// has released the store.
func (t *Tracker) Shutdown(ctx context.Context) error {
	if _, err := t.Stop(); err != nil {
		t.logger.Error("Failed to commit session on shutdown", "error", err)
	}
	if t.backend == nil {
		return nil
	}

	if _, err := t.backend.Submit(backend.Stop{}); err != nil {
		t.logger.Warn("Backend already stopped", "error", err)
	}

	select {
	case <-t.backend.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
