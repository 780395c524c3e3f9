package cli

import "github.com/charmbracelet/lipgloss"

// palette is the colour set used for terminal output.
var palette = struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}{
	Primary: lipgloss.Color("#7C3AED"), // Purple
	Accent:  lipgloss.Color("#06B6D4"), // Cyan
	Muted:   lipgloss.Color("#6C7086"), // Medium gray
	Success: lipgloss.Color("#A6E3A1"), // Green
	Warning: lipgloss.Color("#F9E2AF"), // Yellow
	Error:   lipgloss.Color("#F38BA8"), // Red
}

// styles are the pre-configured lipgloss styles for command output.
// Colours are dropped automatically when output is not a terminal.
var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Answer  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
	Label:   lipgloss.NewStyle().Bold(true).Foreground(palette.Accent),
	Muted:   lipgloss.NewStyle().Foreground(palette.Muted),
	Success: lipgloss.NewStyle().Foreground(palette.Success),
	Warning: lipgloss.NewStyle().Foreground(palette.Warning),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(palette.Error),
	Answer:  lipgloss.NewStyle().PaddingLeft(2),
}
