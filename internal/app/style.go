package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7F5283"))
	stepStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E7D32"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EB1D36"))
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E88E5"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

const ruleWidth = 60

func rule(ch string) string {
	return strings.Repeat(ch, ruleWidth)
}

// preview shows the first n characters of a secret followed by an ellipsis
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s + "..."
	}
	return string(r[:n]) + "..."
}
