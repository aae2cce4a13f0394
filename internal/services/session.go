package services

import (
	"errors"
	"fmt"

	"zeitig/internal/backend"
	"zeitig/internal/types"
)

// ErrNoTopic is returned by Start without a complete selection
var ErrNoTopic = errors.New("select an action and a subject first")

// Start begins a session on the selected topic. Starting while a session
// runs does nothing.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if _, ok := t.setup.Topic(); !ok {
		t.mu.Unlock()
		return ErrNoTopic
	}
	if t.active != nil {
		t.mu.Unlock()
		return nil
	}
	t.active = &types.ActiveSession{Started: t.clock.Now()}
	observer := t.observer
	t.mu.Unlock()

	if observer != nil {
		observer.OnActivate()
	}
	return nil
}

// Tick adds one second to the running session
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		t.active.Duration = t.active.Duration.Add(types.Seconds(1))
	}
}

// Stop ends the running session. Sessions longer than the minimum are
// appended to the history, added to the time table and sent to the backend
// for the durable commit; shorter ones are dropped. committed reports which
// happened. The returned error only concerns the backend submission; the
// local state is updated either way.
func (t *Tracker) Stop() (committed bool, err error) {
	t.mu.Lock()
	if t.active == nil {
		t.mu.Unlock()
		return false, nil
	}

	active := *t.active
	t.active = nil
	observer := t.observer

	var cmd *backend.CommitSession
	if topic, ok := t.setup.Topic(); ok && active.Duration > t.minSession {
		session := types.Session{Topic: topic, Started: active.Started, Ended: t.clock.Now()}
		t.history.Append(session)
		spent := t.content.TimeTable.GetMut(topic)
		*spent = spent.Add(active.Duration)
		cmd = &backend.CommitSession{Session: session, Elapsed: active.Duration}
	} else {
		t.logger.Debug("Discarding short session", "duration", active.Duration.String())
	}
	b := t.backend
	t.mu.Unlock()

	if observer != nil {
		observer.OnDeactivate()
	}
	if cmd == nil {
		return false, nil
	}

	if b != nil {
		if _, err := b.Submit(*cmd); err != nil {
			return true, fmt.Errorf("commit session %s: %w", cmd.Session.Topic, err)
		}
	}
	return true, nil
}

// SelectAction changes the selected action. A running session is stopped
// and, when the new selection is complete, a new one starts.
func (t *Tracker) SelectAction(action *types.Action) error {
	return t.reselect(func(s *types.Setup) bool {
		if sameID(s.Action, action, func(a types.Action) int64 { return a.ID }) {
			return false
		}
		s.Action = cloneOf(action)
		return true
	})
}

// SelectSubject changes the selected subject, see SelectAction
func (t *Tracker) SelectSubject(subject *types.Subject) error {
	return t.reselect(func(s *types.Setup) bool {
		if sameID(s.Subject, subject, func(sub types.Subject) int64 { return sub.ID }) {
			return false
		}
		s.Subject = cloneOf(subject)
		return true
	})
}

func (t *Tracker) reselect(change func(*types.Setup) bool) error {
	t.mu.RLock()
	probe := t.setup
	running := t.active != nil
	t.mu.RUnlock()

	if !change(&probe) {
		return nil
	}

	var stopErr error
	if running {
		_, stopErr = t.Stop()
	}

	t.mu.Lock()
	change(&t.setup)
	_, complete := t.setup.Topic()
	t.mu.Unlock()

	if running && complete {
		if err := t.Start(); err != nil {
			return errors.Join(stopErr, err)
		}
	}
	return stopErr
}

func sameID[T any](current, next *T, id func(T) int64) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	return id(*current) == id(*next)
}

func cloneOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
