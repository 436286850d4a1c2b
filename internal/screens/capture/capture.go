// Package capture is the first screen of a round: take a photo with the
// camera or pick an image file, then wait for the quiz.
package capture

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/quiz"
	"github.com/abhisek/tonesnap/internal/router"
	"github.com/abhisek/tonesnap/internal/screen"
	sess "github.com/abhisek/tonesnap/internal/session"
	"github.com/abhisek/tonesnap/internal/ui/components"
	"github.com/abhisek/tonesnap/internal/ui/layout"
	"github.com/abhisek/tonesnap/internal/ui/theme"
)

const (
	cameraErrorText = "無法開啟相機，請檢查權限或使用上傳功能。"
	emptyPathText   = "請輸入圖片路徑"
)

// Analyzer turns a frame into a quiz. *quiz.Generator satisfies it.
type Analyzer interface {
	Generate(ctx context.Context, f *frame.Frame) (*quiz.AnalysisResult, error)
}

// Camera is a capture device. *frame.DeviceSource satisfies it.
type Camera interface {
	Open() error
	Capture(ctx context.Context) (*frame.Frame, error)
}

// Options are the screen's dependencies.
type Options struct {
	State    *sess.State
	Analyzer Analyzer

	// Camera may be nil, in which case only files can be used.
	Camera     Camera
	DeviceName string

	FrameOptions frame.Options

	// NewQuiz builds the screen pushed once a quiz is ready.
	NewQuiz func(*sess.State) screen.Screen

	Log *logger.Logger
}

type mode int

const (
	modeIdle mode = iota
	modeCapturing
	modePath
)

// CaptureScreen implements screen.Screen for taking the photo.
type CaptureScreen struct {
	opts  Options
	state *sess.State

	mode        mode
	cameraReady bool
	cameraErr   string

	input   components.PathInput
	spinner spinner.Model
}

var _ screen.Screen = (*CaptureScreen)(nil)
var _ screen.KeyHintProvider = (*CaptureScreen)(nil)
var _ screen.Resumer = (*CaptureScreen)(nil)

// New creates the capture screen.
func New(opts Options) *CaptureScreen {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &CaptureScreen{
		opts:    opts,
		state:   opts.State,
		input:   components.NewPathInput("/path/to/photo.jpg", 48),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Checking)),
	}
}

func (s *CaptureScreen) Init() tea.Cmd {
	cam := s.opts.Camera
	if cam == nil {
		return func() tea.Msg { return cameraOpenedMsg{Err: frame.ErrDeviceUnavailable} }
	}
	return func() tea.Msg { return cameraOpenedMsg{Err: cam.Open()} }
}

func (s *CaptureScreen) Title() string {
	if s.state.Phase == sess.PhaseAnalyzing {
		return "分析中"
	}
	return "拍照"
}

// Resume starts a new round when the quiz screen is closed.
func (s *CaptureScreen) Resume() tea.Cmd {
	if s.state.Phase != sess.PhaseCapture || s.state.Quiz != nil {
		s.state.Reset()
	}
	s.mode = modeIdle
	s.input.Reset()
	return nil
}

func (s *CaptureScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.state.Phase == sess.PhaseAnalyzing:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Cancel"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	case s.mode == modePath:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Analyze"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{{Key: "F", Description: "Open file"}}
	if s.cameraReady {
		hints = append([]layout.KeyHint{{Key: "C", Description: "Capture"}}, hints...)
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *CaptureScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cameraOpenedMsg:
		s.cameraReady = msg.Err == nil
		if msg.Err != nil {
			s.opts.Log.Info("camera unavailable", "device", s.opts.DeviceName, "error", msg.Err)
			s.cameraErr = cameraErrorText
		}
		return s, nil

	case frameCapturedMsg:
		return s.handleFrame(msg)

	case analysisDoneMsg:
		return s.handleAnalysis(msg)

	case spinner.TickMsg:
		if !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.mode == modePath {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CaptureScreen) busy() bool {
	return s.mode == modeCapturing || s.state.Phase == sess.PhaseAnalyzing
}

func (s *CaptureScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.state.Phase == sess.PhaseAnalyzing {
		if key == "esc" {
			s.state.CancelAnalysis()
		}
		return s, nil
	}

	switch s.mode {
	case modeCapturing:
		return s, nil

	case modePath:
		switch key {
		case "esc":
			s.mode = modeIdle
			s.input.Reset()
			return s, nil
		case "enter":
			path := strings.TrimSpace(s.input.Value())
			if path == "" {
				s.input.Fail(emptyPathText)
				return s, nil
			}
			s.mode = modeCapturing
			return s, tea.Batch(s.spinner.Tick, s.loadFile(path))
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch key {
	case "c":
		if !s.cameraReady {
			return s, s.openPath()
		}
		s.mode = modeCapturing
		return s, tea.Batch(s.spinner.Tick, s.grab())
	case "f":
		return s, s.openPath()
	}
	return s, nil
}

func (s *CaptureScreen) openPath() tea.Cmd {
	s.mode = modePath
	return s.input.Init()
}

func (s *CaptureScreen) grab() tea.Cmd {
	cam := s.opts.Camera
	return func() tea.Msg {
		f, err := cam.Capture(context.Background())
		return frameCapturedMsg{Kind: frame.KindCamera, Frame: f, Err: err}
	}
}

func (s *CaptureScreen) loadFile(path string) tea.Cmd {
	src := frame.NewFileSource(path, s.opts.FrameOptions)
	return func() tea.Msg {
		f, err := src.Capture(context.Background())
		return frameCapturedMsg{Kind: frame.KindFile, Frame: f, Err: err}
	}
}

func (s *CaptureScreen) handleFrame(msg frameCapturedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.opts.Log.Warn("capture failed", "source", string(msg.Kind), "error", msg.Err)
		if msg.Kind == frame.KindCamera {
			// Fall back to a file whenever the camera lets us down.
			if frame.IsUnavailable(msg.Err) {
				s.cameraReady = false
			}
			s.cameraErr = cameraErrorText
			return s, s.openPath()
		}
		s.mode = modePath
		s.input.Fail(msg.Err.Error())
		return s, nil
	}

	s.mode = modeIdle
	s.input.Reset()
	return s, s.analyze(msg.Frame)
}

func (s *CaptureScreen) analyze(f *frame.Frame) tea.Cmd {
	id := s.state.ID
	ticket := s.state.BeginAnalysis(f)
	gen := s.opts.Analyzer
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		res, err := gen.Generate(context.Background(), f)
		return analysisDoneMsg{Session: id, Ticket: ticket, Result: res, Err: err}
	})
}

func (s *CaptureScreen) handleAnalysis(msg analysisDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Session != s.state.ID {
		return s, nil
	}
	if !s.state.CompleteAnalysis(msg.Ticket, msg.Result, msg.Err) {
		return s, nil
	}
	if s.state.Phase != sess.PhaseQuiz || s.opts.NewQuiz == nil {
		return s, nil
	}
	next := s.opts.NewQuiz(s.state)
	return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}
