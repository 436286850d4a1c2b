package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tonesnap/internal/quiz"
	"github.com/abhisek/tonesnap/internal/ui/theme"
)

// OptionPickedMsg is emitted when the learner picks an option.
type OptionPickedMsg struct {
	QuestionID int
	OptionID   string
}

// OptionList is the multiple-choice selector for one question. It only
// reports picks; whether a pick counts is decided by the session.
type OptionList struct {
	QuestionID int
	Options    []quiz.Option
	CorrectID  string
	Cursor     int

	// Chosen is the answered option id. Once set the list is read-only
	// and shows the verdict.
	Chosen string
}

// NewOptionList creates a selector for q.
func NewOptionList(q *quiz.Question) OptionList {
	return OptionList{
		QuestionID: q.ID,
		Options:    q.Options,
		CorrectID:  q.CorrectOptionID,
	}
}

// Answered reports whether a choice has been recorded.
func (l OptionList) Answered() bool {
	return l.Chosen != ""
}

// Update handles keyboard navigation and selection: arrows or j/k move,
// enter picks the highlighted option, 1-4 and a-d pick directly.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if l.Answered() {
		return l, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
		return l, nil
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
		return l, nil
	case "enter":
		return l, l.pick(l.Cursor)
	}

	if len(key) == 1 {
		switch c := key[0]; {
		case c >= '1' && c <= '9':
			return l, l.pick(int(c - '1'))
		case c >= 'a' && c <= 'z':
			for i, o := range l.Options {
				if strings.EqualFold(o.ID, key) {
					return l, l.pick(i)
				}
			}
		}
	}
	return l, nil
}

func (l *OptionList) pick(i int) tea.Cmd {
	if i < 0 || i >= len(l.Options) {
		return nil
	}
	l.Cursor = i
	picked := OptionPickedMsg{QuestionID: l.QuestionID, OptionID: l.Options[i].ID}
	return func() tea.Msg { return picked }
}

// View renders the options. After an answer the correct option is green,
// a wrong choice red and the rest faded.
func (l OptionList) View() string {
	var b strings.Builder
	for i, opt := range l.Options {
		prefix := "  "
		if i == l.Cursor && !l.Answered() {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s  %s", prefix, i+1, opt.ID, opt.Text)

		switch {
		case !l.Answered() && i == l.Cursor:
			line = theme.Selected.Render(line)
		case !l.Answered():
			line = theme.Unselected.Render(line)
		case opt.ID == l.CorrectID:
			line = theme.Correct.Render(line + "  ✓")
		case opt.ID == l.Chosen:
			line = theme.Incorrect.Render(line + "  ✗")
		default:
			line = theme.Faded.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
