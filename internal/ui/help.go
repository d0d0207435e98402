package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var helpStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7D56F4")).
	Padding(1, 3).
	Bold(false)

var helpTitleStyle = lipgloss.NewStyle().Bold(true)

// RenderHelp returns the key binding overlay, centred in width x height.
func RenderHelp(h help.Model, keys KeyMap, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		helpTitleStyle.Render("scpedit keys"),
		"",
		h.FullHelpView(keys.FullHelp()),
		"",
		"Any key closes this help.",
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpStyle.Render(body))
}
