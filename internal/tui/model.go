package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"zeitig/internal/app"
	"zeitig/internal/backend"
	"zeitig/internal/services"
	"zeitig/internal/types"
)

type column int

const (
	actionColumn column = iota
	subjectColumn
)

type model struct {
	app    *app.App
	ticks  *ticker
	input  textinput.Model
	focus  column
	cursor [2]int

	showInsights bool
	notice       string
	width        int
}

func newModel(a *app.App, ticks *ticker) model {
	input := textinput.New()
	input.Placeholder = "name"
	input.CharLimit = 120
	input.Prompt = "> "

	return model{
		app:   a,
		ticks: ticks,
		input: input,
	}
}

// tracker is created by App.Start, after the program exists
func (m model) tracker() *services.Tracker {
	return m.app.Tracker()
}

func (m model) Init() tea.Cmd {
	return m.ticks.arm()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if !m.ticks.accept(msg) {
			return m, nil
		}
		m.tracker().Tick()
		return m, m.ticks.next()

	case backend.Event:
		m.app.HandleEvent(msg)
		m.clampCursors()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.tracker().Setup().Creating.Kind {
		case types.CreatingAction, types.CreatingSubject:
			m, cmd = m.updateDraft(msg)
		case types.CreatingChoosing:
			m = m.updateChoosing(msg)
		default:
			m, cmd = m.updateBrowsing(msg)
		}
		if tick := m.ticks.arm(); tick != nil {
			cmd = tea.Batch(cmd, tick)
		}
		return m, cmd
	}

	return m, nil
}

func (m model) updateBrowsing(msg tea.KeyMsg) (model, tea.Cmd) {
	t := m.tracker()
	m.notice = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "left", "right", "h", "l":
		m.focus = 1 - m.focus
	case "up", "k":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case "down", "j":
		if m.cursor[m.focus] < m.columnLen(m.focus)-1 {
			m.cursor[m.focus]++
		}
	case "enter":
		m.selectUnderCursor()
	case " ", "s":
		if _, running := t.Active(); running {
			committed, err := t.Stop()
			switch {
			case err != nil:
				m.notice = err.Error()
			case !committed:
				m.notice = "session too short, discarded"
			}
		} else if err := t.Start(); err != nil {
			m.notice = err.Error()
		}
	case "n":
		t.ToggleCreating()
	case "i":
		m.showInsights = !m.showInsights
	}
	return m, nil
}

func (m model) updateChoosing(msg tea.KeyMsg) model {
	t := m.tracker()

	var kind types.CreatingKind
	switch msg.String() {
	case "a":
		kind = types.CreatingAction
	case "s":
		kind = types.CreatingSubject
	case "n", "esc":
		t.ToggleCreating()
		return m
	default:
		return m
	}

	if err := t.ChooseCreating(kind); err != nil {
		m.notice = err.Error()
		return m
	}
	m.input.Reset()
	m.input.Focus()
	return m
}

func (m model) updateDraft(msg tea.KeyMsg) (model, tea.Cmd) {
	t := m.tracker()

	switch msg.Type {
	case tea.KeyEsc:
		t.ToggleCreating()
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		_, ok, err := t.SubmitDraft()
		if err != nil {
			m.notice = err.Error()
		}
		if ok {
			m.input.Reset()
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	t.SetDraft(m.input.Value())
	return m, cmd
}

func (m *model) selectUnderCursor() {
	t := m.tracker()
	i := m.cursor[m.focus]

	var err error
	switch m.focus {
	case actionColumn:
		actions := t.Actions()
		if i >= len(actions) {
			return
		}
		err = t.SelectAction(&actions[i])
	case subjectColumn:
		subjects := t.Subjects()
		if i >= len(subjects) {
			return
		}
		err = t.SelectSubject(&subjects[i])
	}
	if err != nil {
		m.notice = err.Error()
	}
}

func (m model) columnLen(c column) int {
	if c == actionColumn {
		return len(m.tracker().Actions())
	}
	return len(m.tracker().Subjects())
}

func (m *model) clampCursors() {
	for _, c := range []column{actionColumn, subjectColumn} {
		m.cursor[c] = max(0, min(m.cursor[c], m.columnLen(c)-1))
	}
}
