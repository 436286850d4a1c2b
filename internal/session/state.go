// Package session holds the in-memory state of one capture-to-quiz round:
// the captured frame, the generated quiz, answers and the tone grader.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/grading"
	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/quiz"
	"github.com/abhisek/tonesnap/internal/store"
)

// ErrAnalysisFailed is the only failure shown to the learner. Its text is
// the message displayed.
var ErrAnalysisFailed = errors.New("AI 分析失敗，請重試或更換照片。")

// Phase is where the round is.
type Phase int

const (
	PhaseCapture   Phase = iota // waiting for a photo
	PhaseAnalyzing              // quiz generation in flight
	PhaseQuiz                   // quiz shown
)

func (p Phase) String() string {
	switch p {
	case PhaseCapture:
		return "capture"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseQuiz:
		return "quiz"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Ticket identifies one analysis request. Results carrying an older ticket
// are discarded.
type Ticket uint64

// Answer is the recorded answer to one question. The first answer wins.
type Answer struct {
	QuestionID int
	OptionID   string // option id, or the tone glyph for the tone question
	Correct    bool
	At         time.Time
}

// AnswerRecorder receives every recorded answer. store.EventRepo satisfies it.
type AnswerRecorder interface {
	AppendAnswer(ctx context.Context, data store.AnswerEventData) error
}

// Options configures a State.
type Options struct {
	Grading  grading.Config
	Recorder AnswerRecorder
	Log      *logger.Logger
}

// State is one learner's round. It is owned by the UI event loop and is not
// safe for concurrent use.
type State struct {
	ID    uuid.UUID
	Phase Phase
	Frame *frame.Frame
	Quiz  *quiz.AnalysisResult

	// Err is set when the last analysis failed. It satisfies
	// errors.Is(Err, ErrAnalysisFailed) and wraps the cause.
	Err error

	answers      map[int]Answer
	explanations map[int]bool
	machines     map[int]*grading.Machine

	ticket Ticket
	opts   Options
}

// New returns a State waiting for a capture.
func New(opts Options) *State {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	s := &State{opts: opts}
	s.clear()
	return s
}

func (s *State) clear() {
	s.ID = uuid.New()
	s.Phase = PhaseCapture
	s.Frame = nil
	s.Quiz = nil
	s.Err = nil
	s.answers = make(map[int]Answer)
	s.explanations = make(map[int]bool)
	s.machines = make(map[int]*grading.Machine)
}

// BeginAnalysis records the frame and moves to analyzing. The returned
// ticket must be handed back to CompleteAnalysis.
func (s *State) BeginAnalysis(f *frame.Frame) Ticket {
	s.ticket++
	s.Phase = PhaseAnalyzing
	s.Frame = f
	s.Err = nil
	return s.ticket
}

// CompleteAnalysis applies a generation result. It returns false, changing
// nothing, when the ticket is stale. On error the round goes back to
// capture with Err set.
func (s *State) CompleteAnalysis(t Ticket, res *quiz.AnalysisResult, err error) bool {
	if t != s.ticket || s.Phase != PhaseAnalyzing {
		return false
	}

	if err == nil && res == nil {
		err = errors.New("no quiz returned")
	}
	if err != nil {
		s.opts.Log.Warn("analysis failed", "session", s.ID.String(), "error", err)
		s.Phase = PhaseCapture
		s.Frame = nil
		s.Err = fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
		return true
	}

	s.Phase = PhaseQuiz
	s.Quiz = res
	s.answers = make(map[int]Answer)
	s.explanations = make(map[int]bool)
	s.machines = make(map[int]*grading.Machine)
	if q := res.ToneQuestion(); q != nil {
		s.machines[q.ID] = grading.New(q.CorrectOptionID, s.opts.Grading)
	}
	return true
}

// CancelAnalysis abandons an analysis in flight. Its result will be
// discarded when it arrives.
func (s *State) CancelAnalysis() {
	if s.Phase != PhaseAnalyzing {
		return
	}
	s.ticket++
	s.Phase = PhaseCapture
	s.Frame = nil
}

// Select answers a multiple-choice question. Only the first selection on a
// question is accepted; later ones return accepted == false.
func (s *State) Select(questionID int, optionID string) (accepted, correct bool) {
	if s.Phase != PhaseQuiz {
		return false, false
	}
	q := s.Quiz.Question(questionID)
	if q == nil || q.IsTone() {
		return false, false
	}
	if _, done := s.answers[questionID]; done {
		return false, false
	}
	if _, ok := q.Option(optionID); !ok {
		return false, false
	}

	correct = optionID == q.CorrectOptionID
	s.record(q, optionID, correct)
	return true, correct
}

// Grading returns the tone grader for a question, or nil.
func (s *State) Grading(questionID int) *grading.Machine {
	return s.machines[questionID]
}

// ApplyGrading records a correct tone drawing as the expected glyph and
// reveals its explanation. It reports whether an answer was recorded.
func (s *State) ApplyGrading(questionID int, eff grading.Effects) bool {
	if eff.Outcome != grading.OutcomeCorrect || s.Phase != PhaseQuiz {
		return false
	}
	m := s.machines[questionID]
	q := s.Quiz.Question(questionID)
	if m == nil || q == nil {
		return false
	}
	if _, done := s.answers[questionID]; done {
		return false
	}
	s.record(q, m.Expected(), true)
	return true
}

func (s *State) record(q *quiz.Question, answer string, correct bool) {
	s.answers[q.ID] = Answer{QuestionID: q.ID, OptionID: answer, Correct: correct, At: time.Now()}
	s.explanations[q.ID] = true

	if s.opts.Recorder == nil {
		return
	}
	err := s.opts.Recorder.AppendAnswer(context.Background(), store.AnswerEventData{
		SessionID:    s.ID.String(),
		QuestionID:   q.ID,
		QuestionType: string(q.Type),
		Answer:       answer,
		Correct:      correct,
	})
	if err != nil {
		s.opts.Log.Warn("record answer", "session", s.ID.String(), "question", q.ID, "error", err)
	}
}

// Answer returns the recorded answer for a question.
func (s *State) Answer(questionID int) (Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// ExplanationVisible reports whether a question's explanation is shown.
func (s *State) ExplanationVisible(questionID int) bool {
	return s.explanations[questionID]
}

// Reset discards the quiz and everything attached to it and starts a new
// round with a fresh ID. An analysis in flight is abandoned.
func (s *State) Reset() {
	s.ticket++
	s.clear()
}

// Score returns the number of correct answers and the number of questions.
func (s *State) Score() (correct, total int) {
	if s.Quiz == nil {
		return 0, 0
	}
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	return correct, len(s.Quiz.Questions)
}

// Complete reports whether every question has an answer.
func (s *State) Complete() bool {
	return s.Quiz != nil && len(s.answers) == len(s.Quiz.Questions)
}
