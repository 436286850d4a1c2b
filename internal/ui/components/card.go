package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tonesnap/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for every card on a
// screen so they visually align.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(content)
}

// ActionKey renders a key hint as a pill, e.g. "[c] 拍照".
func ActionKey(key, label string, enabled bool) string {
	if !enabled {
		return theme.Faded.Render("[" + key + "] " + label)
	}
	return theme.Badge.Render(key) + " " + theme.Body.Render(label)
}

// Center places s in the middle of a width x height box.
func Center(s string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}
