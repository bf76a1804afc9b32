package cmd

import "github.com/charmbracelet/lipgloss"

// Shared terminal styles for user-facing command output.
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F780FF")). // Bright pink
			Bold(true)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD")). // Cyan
			Italic(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9E9F4")) // Light purple/white

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")). // Muted purple
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")). // Red
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")) // Green
)
