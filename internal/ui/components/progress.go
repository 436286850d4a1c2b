package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tonesnap/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label     string
	Done      int
	Total     int
	ShowCount bool
	Width     int
}

// NewProgressBar creates a progress bar for done out of total.
func NewProgressBar(label string, done, total int, showCount bool, width int) ProgressBar {
	return ProgressBar{
		Label:     label,
		Done:      done,
		Total:     total,
		ShowCount: showCount,
		Width:     width,
	}
}

// Percent returns the filled fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	count := ""
	if p.ShowCount {
		count = fmt.Sprintf("  %d/%d", p.Done, p.Total)
	}

	barWidth := p.Width - lipgloss.Width(result) - len(count)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent())
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if count != "" {
		result += theme.Hint.Render(count)
	}

	return result
}
