package capture

import (
	"errors"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/tonesnap/internal/session"
	"github.com/abhisek/tonesnap/internal/ui/components"
	"github.com/abhisek/tonesnap/internal/ui/theme"
)

func (s *CaptureScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("拍下身邊的物品，學習它的中文發音"))
	b.WriteString("\n\n")
	b.WriteString(s.renderCameraStatus())
	b.WriteString("\n\n")

	switch {
	case s.state.Phase == sess.PhaseAnalyzing:
		b.WriteString(s.spinner.View() + " " + theme.Checking.Render("AI 分析中..."))
	case s.mode == modeCapturing:
		b.WriteString(s.spinner.View() + " " + theme.Body.Render("讀取影像..."))
	case s.mode == modePath:
		b.WriteString(theme.Body.Render("圖片路徑"))
		b.WriteString("\n")
		b.WriteString(s.input.View())
	default:
		b.WriteString(components.ActionKey("c", "拍照", s.cameraReady))
		b.WriteString("    ")
		b.WriteString(components.ActionKey("f", "選擇圖片", true))
	}

	if s.state.Err != nil && errors.Is(s.state.Err, sess.ErrAnalysisFailed) {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(sess.ErrAnalysisFailed.Error()))
	}

	card := components.Card(b.String(), cw)
	return components.Center(card, width, height)
}

func (s *CaptureScreen) renderCameraStatus() string {
	name := s.opts.DeviceName
	if name == "" {
		name = "camera"
	}
	if s.cameraReady {
		return lipgloss.NewStyle().Foreground(theme.Success).Render("● ") + theme.Body.Render(name)
	}
	if s.cameraErr == "" {
		return theme.Hint.Render("○ " + name)
	}
	return lipgloss.NewStyle().Foreground(theme.Error).Render("○ ") + theme.Hint.Render(s.cameraErr)
}
