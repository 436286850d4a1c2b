package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/tonesnap/internal/grading"
	qz "github.com/abhisek/tonesnap/internal/quiz"
	"github.com/abhisek/tonesnap/internal/ui/components"
	"github.com/abhisek/tonesnap/internal/ui/theme"
)

var typeLabels = map[qz.QuestionType]string{
	qz.TypeInitial: "聲母 (Initial)",
	qz.TypeFinal:   "韻母 (Final)",
	qz.TypeTone:    "聲調 (Tone)",
}

// Lines used by everything but the canvas on the tone page.
const toneChrome = 14

// View renders the quiz top-aligned. The canvas position it records is
// what pointer events are mapped against.
func (s *QuizScreen) View(width, height int) string {
	res := s.state.Quiz
	s.canvasOnPage = false
	if res == nil {
		return ""
	}

	var blocks []string
	blocks = append(blocks, s.renderWord(width))
	blocks = append(blocks, lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	blocks = append(blocks, s.renderTabs())
	blocks = append(blocks, "")

	q := s.current()
	blocks = append(blocks, lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("  "+q.QuestionText))
	blocks = append(blocks, "")

	if q.IsTone() {
		blocks = append(blocks, s.renderCanvas(q, width, height, lipgloss.Height(strings.Join(blocks, "\n"))))
	} else {
		blocks = append(blocks, indent(s.lists[q.ID].View(), 2))
	}

	if s.state.ExplanationVisible(q.ID) {
		blocks = append(blocks, s.renderExplanation(q, width))
	}

	if s.state.Complete() {
		correct, total := s.state.Score()
		bar := components.NewProgressBar("得分", correct, total, true, min(width-4, 40))
		blocks = append(blocks, "", "  "+bar.View()+"   "+components.ActionKey("r", "拍下一張", true))
	}

	if s.status != "" {
		blocks = append(blocks, "", theme.Hint.Render("  "+s.status))
	}
	return strings.Join(blocks, "\n")
}

func (s *QuizScreen) renderWord(width int) string {
	res := s.state.Quiz
	word := theme.Hanzi.Render(res.DetectedObject) + "  " +
		theme.Pinyin.Render(res.Pinyin) + "  " +
		theme.Hint.Render(res.EnglishMeaning)

	voice := "speech off"
	if sp := s.opts.Speaker; sp != nil {
		if v, ok := sp.Voice(); ok {
			voice = "[s] 🔊  [v] " + v.Name
		} else {
			voice = "[s] 🔊  " + "zh-CN"
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, word) + "\n" +
		lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(voice))
}

func (s *QuizScreen) renderTabs() string {
	parts := make([]string, 0, len(s.state.Quiz.Questions))
	for i, q := range s.state.Quiz.Questions {
		label := fmt.Sprintf(" %d %s ", i+1, typeLabels[q.Type])
		if a, ok := s.state.Answer(q.ID); ok {
			if a.Correct {
				label += "✓ "
			} else {
				label += "✗ "
			}
		}
		if i == s.page {
			parts = append(parts, theme.Badge.Render(label))
		} else {
			parts = append(parts, theme.Unselected.Render(label))
		}
	}
	return "  " + strings.Join(parts, " ")
}

// renderCanvas sizes the canvas to the space left and records its origin.
// top is the number of lines already above it.
func (s *QuizScreen) renderCanvas(q *qz.Question, width, height, top int) string {
	m := s.state.Grading(q.ID)
	if m == nil {
		return ""
	}

	rows := min(max(height-toneChrome, 4), 10)
	s.canvas = components.NewToneCanvas(rows*16/5, rows)
	w, _ := s.canvas.Size()

	s.canvasX = max((width-w)/2, 0)
	s.canvasY = top
	s.canvasOnPage = true

	out := indent(s.canvas.View(m), s.canvasX)
	if m.State() == grading.StateIdle && len(m.Strokes()) == 0 {
		out += "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render("請在上方畫出聲調，畫完自動檢測"))
	}
	return out
}

func (s *QuizScreen) renderExplanation(q *qz.Question, width int) string {
	a, _ := s.state.Answer(q.ID)
	verdict := theme.Incorrect.Render("錯誤")
	border := theme.Error
	if a.Correct {
		verdict = theme.Correct.Render("正確！")
		border = theme.Success
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(border).
		PaddingLeft(1).
		MarginLeft(2).
		Width(max(width-6, 10)).
		Render(verdict + "\n" + theme.Body.Render(q.Explanation))
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
