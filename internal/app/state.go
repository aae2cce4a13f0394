package app

import (
	"context"
	"fmt"
	"slices"

	"zeitig/internal/backend"
	"zeitig/internal/infrastructure/errors"
	"zeitig/internal/snapshot"
	"zeitig/internal/types"
)

// Status summarizes the stored state
type Status struct {
	DatabasePath  string
	SchemaVersion string
	Actions       int
	Subjects      int
	Sessions      int
	Total         types.SpentTime
}

// Status reports the schema version and the size of the loaded state
func (a *App) Status(ctx context.Context) (Status, error) {
	version, _, err := a.dbService.SchemaVersion(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		DatabasePath:  a.cfg.Database.Path,
		SchemaVersion: version,
		Actions:       len(a.content.Actions),
		Subjects:      len(a.content.Subjects),
		Sessions:      a.history.Len(),
	}
	for _, entry := range a.content.TimeTable.Entries() {
		st.Total = st.Total.Add(entry.Spent)
	}
	return st, nil
}

// Import moves a legacy snapshot into an empty database. Must run before Start.
func (a *App) Import(ctx context.Context, path string) error {
	if a.worker != nil {
		return fmt.Errorf("import: the store is owned by the backend worker")
	}
	if len(a.content.Actions) > 0 || len(a.content.Subjects) > 0 || a.history.Len() > 0 {
		return errors.HandleValidationError("Import", "database", a.cfg.Database.Path, "database already contains data")
	}

	snap, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}
	content, history, err := snap.ToState()
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	if err := a.store.TransferContent(ctx, content); err != nil {
		return err
	}
	if err := a.store.TransferHistory(ctx, history); err != nil {
		return err
	}

	a.logger.Info("Imported snapshot", "path", path,
		"actions", len(content.Actions), "subjects", len(content.Subjects), "sessions", history.Len())
	return a.load(ctx)
}

// Export writes the current state as a snapshot file
func (a *App) Export(path string) error {
	var snap *snapshot.Snapshot
	if a.tracker != nil {
		snap = a.tracker.Snapshot()
	} else {
		snap = snapshot.FromState(a.content, a.history)
	}
	return snapshot.WriteFile(path, snap)
}

// Catalog returns copies of the actions and subjects ordered by name
func (a *App) Catalog() ([]types.Action, []types.Subject) {
	if a.tracker != nil {
		return a.tracker.Actions(), a.tracker.Subjects()
	}
	return slices.Clone(a.content.Actions), slices.Clone(a.content.Subjects)
}

// ResolveTopic finds the first action and subject with the given names
func (a *App) ResolveTopic(actionName, subjectName string) (types.Topic, error) {
	var topic types.Topic
	found := false
	for _, act := range a.content.Actions {
		if act.Name == actionName {
			topic.Action, found = act, true
			break
		}
	}
	if !found {
		return types.Topic{}, errors.HandleNotFound("ResolveTopic", "action", actionName)
	}

	found = false
	for _, sub := range a.content.Subjects {
		if sub.Name == subjectName {
			topic.Subject, found = sub, true
			break
		}
	}
	if !found {
		return types.Topic{}, errors.HandleNotFound("ResolveTopic", "subject", subjectName)
	}
	return topic, nil
}

// Do runs one command through the worker and waits for its event. Events of
// other commands are applied on the way. sink must be the sink passed to Start.
func (a *App) Do(ctx context.Context, sink *backend.ChannelSink, cmd backend.Command) (backend.Event, error) {
	if a.worker == nil {
		return nil, fmt.Errorf("do: app not started")
	}
	id, err := a.worker.Submit(cmd)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case event := <-sink.Events():
			a.HandleEvent(event)
			if event.CommandID() != id {
				continue
			}
			if failed, ok := event.(backend.Error); ok {
				return event, failed.Err
			}
			return event, nil
		case <-a.worker.Done():
			return nil, backend.ErrWorkerStopped
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
