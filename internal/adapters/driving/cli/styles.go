package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal styles for human-readable output. JSON output paths bypass
// these entirely.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))
)
