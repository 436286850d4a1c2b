package grading

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

const (
	strokeColor     = "#10b981"
	backgroundColor = "#ffffff"
)

// Raster renders every stroke on a white surface and encodes it as PNG.
func (m *Machine) Raster() ([]byte, error) {
	dc := gg.NewContext(m.cfg.Width, m.cfg.Height)
	dc.SetHexColor(backgroundColor)
	dc.Clear()

	dc.SetHexColor(strokeColor)
	dc.SetLineWidth(m.cfg.LineWidth)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, s := range m.strokes {
		switch len(s) {
		case 0:
		case 1:
			dc.DrawCircle(s[0].X, s[0].Y, m.cfg.LineWidth/2)
			dc.Fill()
		default:
			dc.MoveTo(s[0].X, s[0].Y)
			for _, p := range s[1:] {
				dc.LineTo(p.X, p.Y)
			}
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode drawing: %w", err)
	}
	return buf.Bytes(), nil
}

// Cells projects the strokes onto a cols x rows grid, for drawing the
// surface in a terminal. A cell is set when a stroke passes through it.
func (m *Machine) Cells(cols, rows int) [][]bool {
	grid := make([][]bool, max(rows, 0))
	for i := range grid {
		grid[i] = make([]bool, max(cols, 0))
	}
	if cols <= 0 || rows <= 0 {
		return grid
	}

	sx := float64(cols) / float64(m.cfg.Width)
	sy := float64(rows) / float64(m.cfg.Height)
	mark := func(p Point) {
		c := min(int(p.X*sx), cols-1)
		r := min(int(p.Y*sy), rows-1)
		grid[r][c] = true
	}

	for _, s := range m.strokes {
		for i, p := range s {
			if i == 0 {
				mark(p)
				continue
			}
			prev := s[i-1]
			// Sample often enough to touch every cell the segment crosses.
			steps := int(math.Ceil(max(math.Abs(p.X-prev.X)*sx, math.Abs(p.Y-prev.Y)*sy)*2)) + 1
			for k := 1; k <= steps; k++ {
				t := float64(k) / float64(steps)
				mark(Point{X: prev.X + (p.X-prev.X)*t, Y: prev.Y + (p.Y-prev.Y)*t})
			}
		}
	}
	return grid
}

// CellToPoint maps the centre of a grid cell back to surface units.
func (m *Machine) CellToPoint(col, row, cols, rows int) Point {
	return Point{
		X: (float64(col) + 0.5) * float64(m.cfg.Width) / float64(cols),
		Y: (float64(row) + 0.5) * float64(m.cfg.Height) / float64(rows),
	}
}
