package app

import (
	"context"
	"time"

	"zeitig/internal/backend"
)

// Runtime is the headless event loop: it applies worker events, ticks the
// running session and shuts the app down when its context ends.
type Runtime struct {
	app    *App
	sink   *backend.ChannelSink
	tick   time.Duration
	ticker *time.Ticker
	tickC  <-chan time.Time
}

// NewRuntime starts app with a channel sink driven by the returned runtime
func NewRuntime(ctx context.Context, app *App) *Runtime {
	r := &Runtime{
		app:  app,
		sink: backend.NewChannelSink(32),
		tick: app.cfg.Tracker.Tick,
	}
	// the worker outlives ctx so shutdown can still commit the running session
	app.Start(context.WithoutCancel(ctx), r.sink, r)
	return r
}

// OnActivate starts ticking. Called on the loop goroutine through the tracker.
func (r *Runtime) OnActivate() {
	if r.ticker == nil {
		r.ticker = time.NewTicker(r.tick)
		r.tickC = r.ticker.C
	}
}

// OnDeactivate stops ticking
func (r *Runtime) OnDeactivate() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
		r.tickC = nil
	}
}

// Run processes events and ticks until ctx is done, then shuts the app down
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return r.shutdown()
		case event := <-r.sink.Events():
			r.app.HandleEvent(event)
		case <-r.tickC:
			r.app.tracker.Tick()
		}
	}
}

func (r *Runtime) shutdown() error {
	// keep applying events while the worker drains its queue
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case event := <-r.sink.Events():
				r.app.HandleEvent(event)
			case <-r.app.Done():
				for {
					select {
					case event := <-r.sink.Events():
						r.app.HandleEvent(event)
					default:
						return
					}
				}
			}
		}
	}()

	err := r.app.Shutdown(context.Background())
	r.sink.Close()
	<-drained
	r.OnDeactivate()
	return err
}
