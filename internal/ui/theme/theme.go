package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, emerald on slate.
var (
	Primary   = lipgloss.Color("#10B981") // Emerald
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
	Ink       = lipgloss.Color("#10B981") // tone strokes, same as the raster
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	// Hanzi is the detected object, the biggest thing on the quiz screen.
	Hanzi = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text).
		Align(lipgloss.Center)

	Pinyin = lipgloss.NewStyle().
		Foreground(Primary).
		Align(lipgloss.Center)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Badge = lipgloss.NewStyle().
		Foreground(BgDark).
		Background(Primary).
		Bold(true).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Faded = lipgloss.NewStyle().
		Foreground(Border)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Checking = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
