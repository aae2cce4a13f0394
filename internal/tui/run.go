// Package tui is the interactive terminal front end of the tracker
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"zeitig/internal/app"
	"zeitig/internal/backend"
)

// Run shows the tracker until the user quits or ctx ends, then shuts the
// app down, committing a running session.
func Run(ctx context.Context, a *app.App) error {
	ticks := newTicker(a.Config().Tracker.Tick)
	p := tea.NewProgram(newModel(a, ticks), tea.WithAltScreen(), tea.WithContext(ctx))

	sink := backend.NewProgramSink(p)
	a.Start(context.WithoutCancel(ctx), sink, ticks)

	_, runErr := p.Run()

	shutdownErr := a.Shutdown(context.WithoutCancel(ctx))
	sink.Close()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	return shutdownErr
}
