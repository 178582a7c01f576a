// Package ui renders the agent's reasoning trace for the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for kubesleuth's CLI output.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Accent:    lipgloss.Color("#F59E0B"), // Amber

		Success: lipgloss.Color("#10B981"), // Emerald
		Warning: lipgloss.Color("#F59E0B"), // Amber
		Error:   lipgloss.Color("#EF4444"), // Red
		Muted:   lipgloss.Color("#9CA3AF"), // Gray
	}
}

// Styles contains the styled components for trace rendering.
type Styles struct {
	Thought     lipgloss.Style
	Action      lipgloss.Style
	Observation lipgloss.Style
	Answer      lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Thought: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),

		Action: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Observation: lipgloss.NewStyle().
			Foreground(t.Secondary).
			PaddingLeft(2),

		Answer: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}
