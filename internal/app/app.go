package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/grading"
	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/router"
	"github.com/abhisek/tonesnap/internal/screen"
	"github.com/abhisek/tonesnap/internal/screens/capture"
	"github.com/abhisek/tonesnap/internal/screens/quiz"
	"github.com/abhisek/tonesnap/internal/session"
	"github.com/abhisek/tonesnap/internal/ui/layout"
)

// Options holds the dependencies injected into the TUI.
type Options struct {
	Generator capture.Analyzer
	Checker   quiz.ToneChecker

	// Speaker and Camera may be nil.
	Speaker    quiz.Speaker
	Camera     capture.Camera
	DeviceName string

	FrameOptions frame.Options
	Grading      grading.Config
	Recorder     session.AnswerRecorder

	Log *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	state  *session.State
	width  int
	height int

	// Rows above the content area, for mouse mapping.
	contentTop int
}

// newAppModel creates a new AppModel with the capture screen.
func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	state := session.New(session.Options{
		Grading:  opts.Grading,
		Recorder: opts.Recorder,
		Log:      opts.Log,
	})

	newQuiz := func(st *session.State) screen.Screen {
		return quiz.New(quiz.Options{
			State:   st,
			Checker: opts.Checker,
			Speaker: opts.Speaker,
			Log:     opts.Log,
		})
	}

	captureScreen := capture.New(capture.Options{
		State:        state,
		Analyzer:     opts.Generator,
		Camera:       opts.Camera,
		DeviceName:   opts.DeviceName,
		FrameOptions: opts.FrameOptions,
		NewQuiz:      newQuiz,
		Log:          opts.Log,
	})
	return AppModel{
		router:     router.New(captureScreen),
		state:      state,
		contentTop: layout.HeaderHeight,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return m, nil
		}
		return m, m.router.Update(m.pointer(screen.PointerDown, msg.Mouse()))

	case tea.MouseMotionMsg:
		return m, m.router.Update(m.pointer(screen.PointerMove, msg.Mouse()))

	case tea.MouseReleaseMsg:
		return m, m.router.Update(m.pointer(screen.PointerUp, msg.Mouse()))
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// pointer translates a terminal mouse position into content coordinates.
func (m AppModel) pointer(kind screen.PointerKind, mouse tea.Mouse) screen.PointerMsg {
	return screen.PointerMsg{Kind: kind, X: mouse.X, Y: mouse.Y - m.contentTop}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// render lays out header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var correct, total int
	if m.state.Phase == session.PhaseQuiz {
		correct, total = m.state.Score()
	}
	header := layout.RenderHeader(title, correct, total, m.width)

	var footerHints []layout.KeyHint
	if khp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = khp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
