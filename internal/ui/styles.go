package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"})
)

// Usage renders the help screen: a bold usage line followed by the flag
// descriptions.
func Usage(name, flags string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("usage: " + name + " [flags] <audio file>"))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Plays the file and draws its spectrum; press any key to quit."))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(flags, "\n"))
	b.WriteString("\n")
	return b.String()
}
