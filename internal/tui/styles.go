package tui

import "github.com/charmbracelet/lipgloss"

var (
	surface  = lipgloss.Color("#45475a")
	subtext  = lipgloss.Color("#a6adc8")
	lavender = lipgloss.Color("#b4befe")
	sapphire = lipgloss.Color("#74c7ec")
	green    = lipgloss.Color("#a6e3a1")
	red      = lipgloss.Color("#f38ba8")

	pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(surface).
		Padding(0, 1).
		Width(28)

	paneActive = pane.BorderForeground(lavender)

	titleStyle    = lipgloss.NewStyle().Foreground(sapphire).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(subtext)
	cursorStyle   = lipgloss.NewStyle().Foreground(lavender).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(green)
	runningStyle  = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(red)
)
