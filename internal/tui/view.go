package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zeitig/internal/types"
)

func (m model) View() string {
	t := m.tracker()
	if t == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Zeitig"))
	b.WriteString("\n\n")

	if m.showInsights {
		b.WriteString(m.insightsView())
	} else {
		b.WriteString(m.trackerView())
	}

	if m.notice != "" {
		b.WriteString("\n" + errorStyle.Render(m.notice))
	}
	if last := t.LastError(); last != "" {
		b.WriteString("\n" + errorStyle.Render("backend: "+last))
	}

	b.WriteString("\n\n" + mutedStyle.Render(m.help()))
	return b.String()
}

func (m model) trackerView() string {
	t := m.tracker()
	setup := t.Setup()

	actions := make([]string, 0)
	for _, a := range t.Actions() {
		actions = append(actions, a.Name)
	}
	subjects := make([]string, 0)
	for _, s := range t.Subjects() {
		subjects = append(subjects, s.Name)
	}

	selectedAction, selectedSubject := -1, -1
	if setup.Action != nil {
		selectedAction = slices.IndexFunc(t.Actions(), func(a types.Action) bool { return a.ID == setup.Action.ID })
	}
	if setup.Subject != nil {
		selectedSubject = slices.IndexFunc(t.Subjects(), func(s types.Subject) bool { return s.ID == setup.Subject.ID })
	}

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		m.column("Actions", actions, actionColumn, selectedAction),
		m.column("Subjects", subjects, subjectColumn, selectedSubject),
	)

	var b strings.Builder
	b.WriteString(columns)
	b.WriteString("\n")
	b.WriteString(m.sessionLine())
	b.WriteString("\n")
	b.WriteString(m.creatingView(setup.Creating))
	return b.String()
}

func (m model) column(title string, items []string, c column, selected int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("none yet"))
	}
	for i, item := range items {
		prefix := "  "
		if m.focus == c && i == m.cursor[c] {
			prefix = cursorStyle.Render("> ")
		}
		if i == selected {
			item = selectedStyle.Render(item + " *")
		}
		b.WriteString(prefix + item + "\n")
	}

	if m.focus == c {
		return paneActive.Render(b.String())
	}
	return pane.Render(b.String())
}

func (m model) sessionLine() string {
	t := m.tracker()
	topic, ok := t.Setup().Topic()
	if !ok {
		return mutedStyle.Render("Select an action and a subject")
	}

	line := fmt.Sprintf("%s  total %s", topic, t.Get(topic))
	if _, running := t.Active(); running {
		return line + "  " + runningStyle.Render("● "+t.CurrentSessionDuration().String())
	}
	return line + "  " + mutedStyle.Render("stopped")
}

func (m model) creatingView(creating types.Creating) string {
	switch creating.Kind {
	case types.CreatingChoosing:
		return "Create: [a]ction or [s]ubject"
	case types.CreatingAction, types.CreatingSubject:
		return fmt.Sprintf("New %s\n%s", creating.Kind, m.input.View())
	default:
		return ""
	}
}

func (m model) insightsView() string {
	var b strings.Builder
	weeks := 0
	for week := range m.app.Insights().Generate(m.tracker().History()) {
		weeks++
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s - %s", week.Begin, week.End)))
		b.WriteString("  " + week.Total().String() + "\n")
		for _, e := range week.Entries {
			fmt.Fprintf(&b, "  %s  %s\n", e.Topic, e.Spent)
		}
		b.WriteString("\n")
	}
	if weeks == 0 {
		return mutedStyle.Render("no sessions recorded")
	}
	return b.String()
}

func (m model) help() string {
	switch m.tracker().Setup().Creating.Kind {
	case types.CreatingChoosing:
		return "a action • s subject • esc cancel"
	case types.CreatingAction, types.CreatingSubject:
		return "enter create • esc cancel"
	}
	label := m.tracker().Setup().NewItemLabel()
	return "tab switch • ↑/↓ move • enter select • space start/stop • n " + strings.ToLower(label) + " • i insights • q quit"
}
