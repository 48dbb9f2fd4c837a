package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for terminal output.
var (
	// Report header styles.
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // gray/dim

	// Health tag styles.
	operationalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
	degradedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow
	failedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")) // red

	// Table styles.
	nameStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// Generation styles.
	providerTagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	spinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta

	// Error block style.
	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("1"))
)
