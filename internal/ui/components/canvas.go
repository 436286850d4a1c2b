package components

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tonesnap/internal/grading"
	"github.com/abhisek/tonesnap/internal/ui/theme"
)

// Overlay texts shown across the middle of the canvas.
const (
	CheckingText  = "AI 正在檢測..."
	IncorrectText = "形狀不對，請重畫！"
	CorrectText   = "正確！"
)

// ToneCanvas draws a grading machine's strokes as terminal cells inside a
// one-cell border.
type ToneCanvas struct {
	Cols, Rows int
}

// NewToneCanvas returns a canvas with a cols x rows drawing area.
func NewToneCanvas(cols, rows int) ToneCanvas {
	return ToneCanvas{Cols: cols, Rows: rows}
}

// Size is the rendered size, border included.
func (c ToneCanvas) Size() (width, height int) {
	return c.Cols + 2, c.Rows + 2
}

// PointAt maps a cell, relative to the canvas' outer top-left corner, to a
// point on the machine's surface. inside is false for the border and
// anything beyond it; the point is still usable for drags that leave the
// canvas since the machine clamps.
func (c ToneCanvas) PointAt(m *grading.Machine, x, y int) (p grading.Point, inside bool) {
	col, row := x-1, y-1
	inside = col >= 0 && col < c.Cols && row >= 0 && row < c.Rows
	return m.CellToPoint(col, row, c.Cols, c.Rows), inside
}

// View renders the strokes with an overlay for the grading state.
func (c ToneCanvas) View(m *grading.Machine) string {
	ink := lipgloss.NewStyle().Foreground(theme.Ink)
	grid := m.Cells(c.Cols, c.Rows)

	lines := make([]string, c.Rows)
	for r, row := range grid {
		var b strings.Builder
		for _, set := range row {
			if set {
				b.WriteString("█")
			} else {
				b.WriteString(" ")
			}
		}
		lines[r] = ink.Render(b.String())
	}

	var (
		overlay string
		border  color.Color = theme.Border
	)
	switch m.State() {
	case grading.StateChecking:
		overlay, border = theme.Checking.Render(CheckingText), theme.Accent
	case grading.StateIncorrect:
		overlay, border = theme.Incorrect.Render(IncorrectText), theme.Error
	case grading.StateCorrect:
		overlay, border = theme.Correct.Render(CorrectText), theme.Success
	}
	if overlay != "" && c.Rows > 0 {
		lines[c.Rows/2] = lipgloss.PlaceHorizontal(c.Cols, lipgloss.Center, overlay)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(strings.Join(lines, "\n"))
}
