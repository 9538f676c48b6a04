package cmd

import "github.com/charmbracelet/lipgloss"

// Monokai Pro colors, shared with the terminal output of other commands.
const (
	colorMagenta = "#FF6188"
	colorComment = "#727072"
	colorYellow  = "#FFD866"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorMagenta))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))
)
