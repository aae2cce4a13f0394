package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zeitig/internal/backend"
	"zeitig/internal/config"
	"zeitig/internal/database"
	"zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/platform"
	"zeitig/internal/repository"
	"zeitig/internal/services"
	"zeitig/internal/snapshot"
	"zeitig/internal/types"
)

const (
	// shutdownTimeout bounds the whole close sequence
	shutdownTimeout = 30 * time.Second
	setupTimeout    = 30 * time.Second
)

// App wires the store, the backend worker and the tracker together.
//
// The store is used directly by the caller goroutine until Start hands it
// to the backend worker, and again once the worker has stopped.
type App struct {
	cfg       *config.Config
	logger    logging.Logger
	clock     platform.Clock
	dbService *database.SQLiteService
	store     *repository.SQLiteStore

	content *types.Content
	history *types.History

	worker    *backend.Worker
	tracker   *services.Tracker
	autosaver *services.Autosaver
	insights  *services.Insights
	saves     sync.WaitGroup
	closed    bool
}

// NewApp opens the database, creates or checks its schema and loads the
// tracker state. A history entry referencing a missing action or subject
// fails startup.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	errors.SetRetryLogger(errors.NewLoggerBridge(logger))

	dbService := database.NewSQLiteService(logger)
	if err := dbService.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	store := repository.NewSQLiteStore(dbService, logger)

	setupCtx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	if err := store.Setup(setupCtx); err != nil {
		store.Close()
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		clock:     platform.SystemClock{},
		dbService: dbService,
		store:     store,
		insights:  services.NewInsights(nil),
	}
	if err := a.load(setupCtx); err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("Application initialized",
		"database", cfg.Database.Path,
		"environment", cfg.Database.Environment)
	return a, nil
}

func (a *App) load(ctx context.Context) error {
	content, err := a.store.LoadContent(ctx)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	history, err := a.store.LoadHistory(ctx, content)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	a.content = content
	a.history = history
	return nil
}

// SetClock replaces the wall clock used by the tracker. Only effective before Start.
func (a *App) SetClock(c platform.Clock) {
	a.clock = c
}

// Start hands the store to a backend worker delivering events to sink and
// creates the tracker. observers are told when sessions start and stop, in
// addition to the autosaver.
func (a *App) Start(ctx context.Context, sink backend.Sink, observers ...services.ActivationObserver) {
	if a.worker != nil {
		return
	}

	a.worker = backend.NewWorker(a.store, sink, a.logger)

	if a.cfg.Autosave.Enabled {
		path := a.cfg.Autosave.Path
		a.autosaver = services.NewAutosaver(func(context.Context) error {
			return snapshot.WriteFile(path, a.tracker.Snapshot())
		}, a.cfg.Autosave.Delay, a.logger)
		observers = append(observers, saveOnDeactivate{a})
	}

	a.tracker = services.NewTracker(a.content, a.history, a.worker, a.logger,
		services.WithClock(a.clock),
		services.WithMinSession(a.cfg.Tracker.MinSession),
		services.WithObserver(observerList(observers)))

	a.worker.Start(ctx)
	a.logger.Debug("Backend worker handed the store")
}

// HandleEvent applies a worker event to the tracker and schedules a save
func (a *App) HandleEvent(event backend.Event) {
	a.tracker.Apply(event)

	switch event.(type) {
	case backend.ActionAdded, backend.SubjectAdded, backend.SessionCommitted:
		if a.autosaver != nil {
			a.autosaver.Schedule()
		}
	}
}

// Tracker returns the tracker; nil before Start
func (a *App) Tracker() *services.Tracker { return a.tracker }

// Insights returns the weekly aggregator
func (a *App) Insights() *services.Insights { return a.insights }

// Config returns the configuration the app was built with
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application's structured logger
func (a *App) Logger() logging.Logger { return a.logger }

// Done is closed once the worker has released the store
func (a *App) Done() <-chan struct{} {
	if a.worker == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return a.worker.Done()
}

// History returns the sessions, from the tracker once started
func (a *App) History() *types.History {
	if a.tracker != nil {
		return a.tracker.History()
	}
	return types.NewHistory(a.history.Sessions()...)
}

// Shutdown commits a running session, stops the worker, writes the final
// snapshot and closes the database, in that order. Calls after a successful
// shutdown do nothing.
func (a *App) Shutdown(ctx context.Context) error {
	if a.closed {
		return nil
	}
	a.logger.Debug("Starting application shutdown sequence")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if a.tracker != nil {
		if err := a.tracker.Shutdown(shutdownCtx); err != nil {
			// the worker may still own the store; closing it now would race
			return errors.NewRepositoryErrorWithContext("shutdown", err, errors.ErrCodeTimeout,
				map[string]string{"operation": "stop_worker"})
		}
	}

	a.saves.Wait()
	if a.autosaver != nil {
		a.autosaver.Close()
		if err := a.autosaver.SaveNow(shutdownCtx); err != nil {
			a.logger.Warn("Failed to write final snapshot", "error", err)
		}
	}

	if err := a.closeDatabaseConnection(shutdownCtx); err != nil {
		a.logger.Error("Error during database closure", "error", err)
		return err
	}

	a.closed = true
	a.logger.Debug("Application shutdown completed")
	return nil
}

// closeDatabaseConnection closes the store, giving up when ctx expires
func (a *App) closeDatabaseConnection(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- a.store.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.NewRepositoryErrorWithContext("shutdown", err, errors.ClassifyError(err),
				map[string]string{"operation": "close_connection"})
		}
		return nil
	case <-ctx.Done():
		a.logger.Error("Database close operation timed out")
		return errors.NewRepositoryError("shutdown", ctx.Err(), errors.ErrCodeTimeout)
	}
}

type observerList []services.ActivationObserver

func (l observerList) OnActivate() {
	for _, o := range l {
		o.OnActivate()
	}
}

func (l observerList) OnDeactivate() {
	for _, o := range l {
		o.OnDeactivate()
	}
}

// saveOnDeactivate writes a snapshot whenever a session ends
type saveOnDeactivate struct {
	app *App
}

func (saveOnDeactivate) OnActivate() {}

func (s saveOnDeactivate) OnDeactivate() {
	a := s.app
	a.saves.Add(1)
	go func() {
		defer a.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// failures are logged by the autosaver
		_ = a.autosaver.SaveNow(ctx)
	}()
}
