package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg struct {
	gen int
}

// ticker drives Tracker.Tick with a chain of tea.Tick commands while a
// session is active. Every activation starts a new generation so ticks of
// an earlier chain are dropped.
type ticker struct {
	interval time.Duration
	active   bool
	armed    bool
	gen      int
}

func newTicker(interval time.Duration) *ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &ticker{interval: interval}
}

func (t *ticker) OnActivate() {
	if t.active {
		return
	}
	t.active = true
	t.armed = false
	t.gen++
}

func (t *ticker) OnDeactivate() {
	t.active = false
}

// arm returns the first tick of a new chain, or nil when one is running
func (t *ticker) arm() tea.Cmd {
	if !t.active || t.armed {
		return nil
	}
	t.armed = true
	return t.next()
}

func (t *ticker) next() tea.Cmd {
	gen := t.gen
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// accept reports whether msg belongs to the running chain
func (t *ticker) accept(msg tickMsg) bool {
	if msg.gen != t.gen {
		return false
	}
	if !t.active {
		t.armed = false
		return false
	}
	return true
}
