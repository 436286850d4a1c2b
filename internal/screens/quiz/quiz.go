// Package quiz shows a generated quiz: multiple-choice pages for the
// initial and final, and a drawing canvas for the tone.
package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/tonesnap/internal/grading"
	"github.com/abhisek/tonesnap/internal/logger"
	qz "github.com/abhisek/tonesnap/internal/quiz"
	"github.com/abhisek/tonesnap/internal/router"
	"github.com/abhisek/tonesnap/internal/screen"
	sess "github.com/abhisek/tonesnap/internal/session"
	"github.com/abhisek/tonesnap/internal/speech"
	"github.com/abhisek/tonesnap/internal/ui/components"
	"github.com/abhisek/tonesnap/internal/ui/layout"
)

// ToneChecker judges a drawing. *quiz.ToneChecker satisfies it.
type ToneChecker interface {
	Check(ctx context.Context, png []byte, expected string) bool
}

// Speaker reads words aloud. *speech.Speaker satisfies it.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Stop()
	Voice() (speech.Voice, bool)
	NextVoice() (speech.Voice, bool)
}

// Options are the screen's dependencies.
type Options struct {
	State   *sess.State
	Checker ToneChecker

	// Speaker may be nil, which turns speech off.
	Speaker Speaker

	Log *logger.Logger
}

// QuizScreen implements screen.Screen for answering a quiz.
type QuizScreen struct {
	opts  Options
	state *sess.State

	page  int
	lists map[int]components.OptionList

	// Where the canvas was last drawn, in content coordinates.
	canvas       components.ToneCanvas
	canvasX      int
	canvasY      int
	canvasOnPage bool

	status string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Leaver = (*QuizScreen)(nil)

// New creates the quiz screen for a state in the quiz phase.
func New(opts Options) *QuizScreen {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	s := &QuizScreen{
		opts:   opts,
		state:  opts.State,
		lists:  make(map[int]components.OptionList),
		canvas: components.NewToneCanvas(32, 10),
	}
	if res := s.state.Quiz; res != nil {
		for i := range res.Questions {
			q := &res.Questions[i]
			if !q.IsTone() {
				s.lists[q.ID] = components.NewOptionList(q)
			}
		}
	}
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return "測驗"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next"}}
	if q := s.current(); q != nil && q.IsTone() {
		hints = append(hints, layout.KeyHint{Key: "X", Description: "Clear"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "1-4", Description: "Answer"})
	}
	if s.opts.Speaker != nil {
		hints = append(hints,
			layout.KeyHint{Key: "S", Description: "Speak"},
			layout.KeyHint{Key: "V", Description: "Voice"},
		)
	}
	return append(hints, layout.KeyHint{Key: "R", Description: "New photo"})
}

// current returns the question on the visible page.
func (s *QuizScreen) current() *qz.Question {
	if s.state.Quiz == nil || len(s.state.Quiz.Questions) == 0 {
		return nil
	}
	return &s.state.Quiz.Questions[s.page]
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.OptionPickedMsg:
		return s.handlePick(msg)

	case screen.PointerMsg:
		return s, s.handlePointer(msg)

	case gradingTimerMsg:
		m := s.machine(msg.Session, msg.Question)
		if m == nil {
			return s, nil
		}
		return s, s.apply(msg.Question, m.Fire(msg.Timer))

	case toneVerdictMsg:
		m := s.machine(msg.Session, msg.Question)
		if m == nil {
			return s, nil
		}
		return s, s.apply(msg.Question, m.Resolve(msg.Ticket, msg.Match))

	case spokenMsg:
		if msg.Err != nil {
			s.opts.Log.Warn("speech failed", "error", msg.Err)
			if errors.Is(msg.Err, speech.ErrUnavailable) {
				s.status = "沒有可用的語音"
			} else {
				s.status = "無法播放語音"
			}
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	n := 0
	if s.state.Quiz != nil {
		n = len(s.state.Quiz.Questions)
	}

	switch msg.String() {
	case "tab", "right", "l":
		cmd := s.finishStroke()
		if n > 0 {
			s.page = (s.page + 1) % n
		}
		return s, cmd
	case "shift+tab", "left", "h":
		cmd := s.finishStroke()
		if n > 0 {
			s.page = (s.page + n - 1) % n
		}
		return s, cmd
	case "r":
		s.state.Reset()
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "s":
		return s, s.speakWord()
	case "v":
		s.nextVoice()
		return s, nil
	case "x":
		if q := s.current(); q != nil && q.IsTone() {
			if m := s.state.Grading(q.ID); m != nil {
				return s, s.apply(q.ID, m.Clear())
			}
		}
		return s, nil
	}

	q := s.current()
	if q == nil || q.IsTone() {
		return s, nil
	}
	list, ok := s.lists[q.ID]
	if !ok {
		return s, nil
	}
	var cmd tea.Cmd
	s.lists[q.ID], cmd = list.Update(msg)
	return s, cmd
}

func (s *QuizScreen) handlePick(msg components.OptionPickedMsg) (screen.Screen, tea.Cmd) {
	accepted, correct := s.state.Select(msg.QuestionID, msg.OptionID)
	if !accepted {
		return s, nil
	}
	list := s.lists[msg.QuestionID]
	list.Chosen = msg.OptionID
	s.lists[msg.QuestionID] = list
	s.opts.Log.Debug("answered", "question", msg.QuestionID, "option", msg.OptionID, "correct", correct)
	return s, nil
}

// handlePointer feeds mouse gestures on the canvas to the tone grader.
// A press must land inside the canvas; drags may leave it.
func (s *QuizScreen) handlePointer(msg screen.PointerMsg) tea.Cmd {
	q := s.current()
	if q == nil || !q.IsTone() || !s.canvasOnPage {
		return nil
	}
	m := s.state.Grading(q.ID)
	if m == nil {
		return nil
	}

	p, inside := s.canvas.PointAt(m, msg.X-s.canvasX, msg.Y-s.canvasY)
	switch msg.Kind {
	case screen.PointerDown:
		if !inside {
			return nil
		}
		return s.apply(q.ID, m.PointerDown(p))
	case screen.PointerMove:
		if !m.Drawing() {
			return nil
		}
		return s.apply(q.ID, m.PointerMove(p))
	case screen.PointerUp:
		if !m.Drawing() {
			return nil
		}
		return s.apply(q.ID, m.PointerUp())
	}
	return nil
}

// finishStroke ends a stroke still in progress on the tone page, as if the
// button had been released. Pointer events stop reaching the grader once the
// canvas is off screen.
func (s *QuizScreen) finishStroke() tea.Cmd {
	q := s.current()
	if q == nil || !q.IsTone() {
		return nil
	}
	m := s.state.Grading(q.ID)
	if m == nil || !m.Drawing() {
		return nil
	}
	return s.apply(q.ID, m.PointerUp())
}

// Leave stops any speech when the screen is popped.
func (s *QuizScreen) Leave() {
	if s.opts.Speaker != nil {
		s.opts.Speaker.Stop()
	}
}

// machine returns the grader a message is addressed to, or nil when the
// message belongs to an earlier round.
func (s *QuizScreen) machine(session uuid.UUID, questionID int) *grading.Machine {
	if session != s.state.ID {
		return nil
	}
	return s.state.Grading(questionID)
}

// apply carries out a grader's effects: timers become ticks, submissions
// go to the tone checker, and a correct drawing is recorded and spoken.
func (s *QuizScreen) apply(questionID int, eff grading.Effects) tea.Cmd {
	var cmds []tea.Cmd
	id := s.state.ID

	if eff.Arm != nil {
		t := *eff.Arm
		cmds = append(cmds, tea.Tick(t.Delay, func(time.Time) tea.Msg {
			return gradingTimerMsg{Session: id, Question: questionID, Timer: t}
		}))
	}

	if eff.Submit != nil {
		sub := *eff.Submit
		checker := s.opts.Checker
		cmds = append(cmds, func() tea.Msg {
			match := checker != nil && checker.Check(context.Background(), sub.PNG, sub.Expected)
			return toneVerdictMsg{Session: id, Question: questionID, Ticket: sub.Ticket, Match: match}
		})
	}

	if s.state.ApplyGrading(questionID, eff) {
		cmds = append(cmds, s.speakWord())
	}
	return tea.Batch(cmds...)
}

func (s *QuizScreen) speakWord() tea.Cmd {
	sp := s.opts.Speaker
	if sp == nil || s.state.Quiz == nil || s.state.Quiz.DetectedObject == "" {
		return nil
	}
	word := s.state.Quiz.DetectedObject
	s.status = ""
	return func() tea.Msg {
		return spokenMsg{Err: sp.Speak(context.Background(), word)}
	}
}

func (s *QuizScreen) nextVoice() {
	if s.opts.Speaker == nil {
		return
	}
	v, ok := s.opts.Speaker.NextVoice()
	if !ok {
		s.status = "沒有可用的中文語音"
		return
	}
	s.status = "語音：" + v.Name
}
