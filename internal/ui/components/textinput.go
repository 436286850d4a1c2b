package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tonesnap/internal/ui/theme"
)

// PathInput wraps bubbles/textinput for typing an image path.
type PathInput struct {
	Model    textinput.Model
	MaxWidth int
	err      string
}

// NewPathInput creates a focused path input.
func NewPathInput(placeholder string, maxWidth int) PathInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if maxWidth > 0 {
		ti.SetWidth(maxWidth)
	}
	ti.Focus()

	return PathInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t PathInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Typing clears a previous error.
func (t PathInput) Update(msg tea.Msg) (PathInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		t.err = ""
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input and the last error, if any.
func (t PathInput) View() string {
	view := t.Model.View()
	if t.err != "" {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.err)
	}
	return view
}

// Value returns the current input value.
func (t PathInput) Value() string {
	return t.Model.Value()
}

// Fail shows why the typed path could not be used.
func (t *PathInput) Fail(reason string) {
	t.err = reason
}

// Reset clears the value and the error.
func (t *PathInput) Reset() {
	t.Model.Reset()
	t.err = ""
}
