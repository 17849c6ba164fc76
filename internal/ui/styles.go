// Package ui holds the terminal styles for the chat loop, mirroring
// the tool's original color scheme.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Banner     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // cyan
	Prompt     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	AnswerHead = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // blue
	ReviewHead = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")) // magenta
	Dim        = lipgloss.NewStyle().Faint(true)
	Error      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
)
