package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#15202b")).
			Background(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7aa2f7")).
			Bold(true)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#c53b53", Dark: "#f7768e"}).
				Render

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ece6a")).
				Render

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Render

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5")).
			Bold(true)

	inboundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	outboundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a"))
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

// centerText centers a single line within width.
func centerText(text string, width int) string {
	if width <= 0 {
		return text
	}
	pad := (width - lipgloss.Width(text)) / 2
	if pad <= 0 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}
