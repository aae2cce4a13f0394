package services

import (
	"context"
	"sync"
	"time"

	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
)

// DefaultAutosaveDelay is the debounce delay of Schedule
const DefaultAutosaveDelay = 5 * time.Second

// SaveFunc writes the current state somewhere durable
type SaveFunc func(ctx context.Context) error

// Autosaver debounces save requests. Schedule arms a timer unless one is
// pending; SaveNow cancels the pending timer and saves immediately. Saves
// never overlap.
type Autosaver struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	closed  bool
	saveMu  sync.Mutex
	save    SaveFunc
	retry   *repoerrors.RetryConfig
	logger  logging.Logger
	timeout time.Duration
}

// NewAutosaver creates an autosaver calling save after delay
func NewAutosaver(save SaveFunc, delay time.Duration, logger logging.Logger) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Autosaver{
		delay:   delay,
		save:    save,
		retry:   repoerrors.SaveRetryConfig(),
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// SetRetryConfig replaces the retry policy of failed saves
func (a *Autosaver) SetRetryConfig(cfg *repoerrors.RetryConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retry = cfg
}

// Schedule requests a save after the debounce delay
func (a *Autosaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.timer != nil {
		return
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

// Pending reports whether a scheduled save has not run yet
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// SaveNow cancels a pending save and saves immediately
func (a *Autosaver) SaveNow(ctx context.Context) error {
	a.mu.Lock()
	a.cancelLocked()
	a.mu.Unlock()
	return a.run(ctx)
}

// Close cancels a pending save. Later Schedule calls are ignored, SaveNow
// still works.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.cancelLocked()
}

func (a *Autosaver) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if a.timer == nil {
		// cancelled by SaveNow after the timer expired
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.run(ctx); err != nil {
		a.logger.Error("Scheduled save failed", "error", err)
	}
}

func (a *Autosaver) run(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	retry := a.retry
	a.mu.Unlock()

	start := time.Now()
	err := repoerrors.WithRetryContext(ctx, retry, func() error {
		if err := a.save(ctx); err != nil {
			// file system failures are usually transient
			return repoerrors.NewRepositoryError("Autosave", err, repoerrors.ErrCodeRetryable)
		}
		return nil
	}, "Autosave")
	if err != nil {
		logging.LogError(a.logger, err, "Autosave", nil)
		return err
	}
	logging.LogOperation(a.logger, "Autosave", time.Since(start), nil)
	return nil
}
