package ui

import "github.com/charmbracelet/lipgloss"

// Theme-aware terminal styles. Colors follow the adaptive pairs so the
// interface reads well on both light and dark backgrounds.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1c71d8", Dark: "#3584e4"}).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Faint(true)

	connectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#26a269", Dark: "#2ec27e"})

	transitionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#c64600", Dark: "#e5a50a"})

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#c01c28", Dark: "#e01b24"})

	selectedStyle = lipgloss.NewStyle().
			Reverse(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			MarginTop(1)

	logStyle = lipgloss.NewStyle().
			Faint(true).
			MaxWidth(100)
)

// statusStyle picks the style for a connection status line.
func statusStyle(connected, transitioning bool) lipgloss.Style {
	switch {
	case connected:
		return connectedStyle
	case transitioning:
		return transitionStyle
	default:
		return labelStyle
	}
}
