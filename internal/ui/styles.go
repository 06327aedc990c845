package ui

import "github.com/charmbracelet/lipgloss"

// Palette: default text, a soft purple accent for attribute names and
// headers, gray for secondary info. Status uses symbols, not color.
const (
	accentHex = "#A78BFA"
	mutedHex  = "#6C7086"
)

var (
	// Accent style for attribute names and highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(accentHex))

	// Muted style for secondary info, hints, types
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color(mutedHex))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(accentHex)).Bold(true)
)
