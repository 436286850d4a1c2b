package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tonesnap/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is implemented by screens that need to react when the screen
// above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// Leaver is implemented by screens that hold resources to release when
// they are popped.
type Leaver interface {
	Leave()
}

// PointerKind is the phase of a pointer gesture.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerMsg is a left-button mouse event translated into coordinates
// relative to the top-left cell of the screen's content area.
type PointerMsg struct {
	Kind PointerKind
	X, Y int
}
