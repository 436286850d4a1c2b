// Package grading captures a hand-drawn tone mark and drives its grading
// through idle, checking, correct and incorrect.
//
// The Machine never sleeps or spawns goroutines. Every input returns the
// Effects the caller must carry out: arm a timer, or send a submission to
// the tone checker and report the verdict back with Resolve. Timers and
// submissions carry sequence numbers, so anything that fires or answers
// after being superseded is ignored.
package grading

import (
	"time"
)

// State is the grading state of a tone question.
type State string

const (
	StateIdle      State = "idle"
	StateChecking  State = "checking"
	StateCorrect   State = "correct"
	StateIncorrect State = "incorrect"
)

// Point is a position on the drawing surface, in surface units.
type Point struct {
	X, Y float64
}

// Stroke is one continuous pointer-down to pointer-up gesture.
type Stroke []Point

// TimerKind says what a timer does when it fires.
type TimerKind string

const (
	TimerSubmit TimerKind = "submit"
	TimerRevert TimerKind = "revert"
)

// Timer is a handle for a delay the caller must schedule. Only the most
// recently armed timer is live.
type Timer struct {
	Kind  TimerKind
	Seq   uint64
	Delay time.Duration
}

// Ticket identifies one submission to the tone checker.
type Ticket uint64

// Submission is a request the caller must send to the tone checker.
type Submission struct {
	Ticket   Ticket
	PNG      []byte
	Expected string
}

// Outcome reports a visible change produced by an input.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeReverted  Outcome = "reverted"
	OutcomeCleared   Outcome = "cleared"
)

// Effects is what the caller must do after an input.
type Effects struct {
	Arm     *Timer
	Submit  *Submission
	Outcome Outcome
}

// Config sizes the drawing surface and the delays.
type Config struct {
	SubmitDelay time.Duration // quiet time after a gesture before grading
	RevertDelay time.Duration // how long an incorrect verdict stays visible
	Width       int
	Height      int
	LineWidth   float64
}

// DefaultConfig matches the reference timings: grade 1.2s after the last
// gesture and show a wrong answer for 1.5s.
func DefaultConfig() Config {
	return Config{
		SubmitDelay: 1200 * time.Millisecond,
		RevertDelay: 1500 * time.Millisecond,
		Width:       320,
		Height:      200,
		LineWidth:   6,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SubmitDelay <= 0 {
		c.SubmitDelay = def.SubmitDelay
	}
	if c.RevertDelay <= 0 {
		c.RevertDelay = def.RevertDelay
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = def.Width, def.Height
	}
	if c.LineWidth <= 0 {
		c.LineWidth = def.LineWidth
	}
	return c
}

// Machine grades drawings for one tone question. It is not safe for
// concurrent use; the UI event loop owns it.
type Machine struct {
	cfg      Config
	expected string

	state   State
	strokes []Stroke
	drawing bool

	timerSeq uint64
	armed    *Timer

	ticketSeq Ticket
	inflight  Ticket
}

// New returns an idle machine expecting the given tone glyph.
func New(expected string, cfg Config) *Machine {
	return &Machine{cfg: cfg.withDefaults(), expected: expected, state: StateIdle}
}

// State returns the current grading state.
func (m *Machine) State() State { return m.state }

// Expected returns the tone glyph being graded against.
func (m *Machine) Expected() string { return m.expected }

// Config returns the effective configuration.
func (m *Machine) Config() Config { return m.cfg }

// Strokes returns a copy of the strokes drawn so far.
func (m *Machine) Strokes() []Stroke {
	out := make([]Stroke, len(m.strokes))
	for i, s := range m.strokes {
		out[i] = append(Stroke(nil), s...)
	}
	return out
}

// Drawing reports whether a gesture is in progress.
func (m *Machine) Drawing() bool { return m.drawing }

// Pending returns the live timer, or nil.
func (m *Machine) Pending() *Timer { return m.armed }

// PointerDown starts a stroke. It cancels a pending submit so that only the
// last gesture within the debounce window triggers grading.
func (m *Machine) PointerDown(p Point) Effects {
	if m.state != StateIdle {
		return Effects{}
	}
	m.cancelTimer()
	m.drawing = true
	m.strokes = append(m.strokes, Stroke{m.clamp(p)})
	return Effects{}
}

// PointerMove extends the current stroke.
func (m *Machine) PointerMove(p Point) Effects {
	if !m.drawing || m.state != StateIdle {
		return Effects{}
	}
	last := len(m.strokes) - 1
	p = m.clamp(p)
	if n := len(m.strokes[last]); m.strokes[last][n-1] == p {
		return Effects{}
	}
	m.strokes[last] = append(m.strokes[last], p)
	return Effects{}
}

// PointerUp ends the stroke and arms the submit timer once anything has
// been drawn.
func (m *Machine) PointerUp() Effects {
	if !m.drawing {
		return Effects{}
	}
	m.drawing = false
	if m.state != StateIdle || !m.hasSegment() {
		return Effects{}
	}
	return Effects{Arm: m.arm(TimerSubmit, m.cfg.SubmitDelay)}
}

// Clear wipes the surface and returns to idle. It does nothing while a
// check is in flight or after a correct answer.
func (m *Machine) Clear() Effects {
	if m.state == StateChecking || m.state == StateCorrect {
		return Effects{}
	}
	m.cancelTimer()
	m.strokes = nil
	m.drawing = false
	m.state = StateIdle
	return Effects{Outcome: OutcomeCleared}
}

// Fire handles an expired timer. Timers that were cancelled or superseded
// are ignored.
func (m *Machine) Fire(t Timer) Effects {
	if m.armed == nil || t.Seq != m.armed.Seq || t.Kind != m.armed.Kind {
		return Effects{}
	}
	m.armed = nil

	switch t.Kind {
	case TimerSubmit:
		return m.submit()
	case TimerRevert:
		if m.state != StateIncorrect {
			return Effects{}
		}
		m.strokes = nil
		m.state = StateIdle
		return Effects{Outcome: OutcomeReverted}
	}
	return Effects{}
}

// Resolve applies the tone checker's verdict for a submission. Verdicts for
// anything but the submission in flight are ignored.
func (m *Machine) Resolve(ticket Ticket, match bool) Effects {
	if m.state != StateChecking || ticket != m.inflight {
		return Effects{}
	}
	m.inflight = 0

	if match {
		m.state = StateCorrect
		return Effects{Outcome: OutcomeCorrect}
	}
	m.state = StateIncorrect
	return Effects{Outcome: OutcomeIncorrect, Arm: m.arm(TimerRevert, m.cfg.RevertDelay)}
}

func (m *Machine) submit() Effects {
	if m.state != StateIdle || m.drawing || !m.hasSegment() {
		return Effects{}
	}

	png, err := m.Raster()
	if err != nil {
		// Nothing can be sent; treat it like a failed check.
		m.state = StateIncorrect
		return Effects{Outcome: OutcomeIncorrect, Arm: m.arm(TimerRevert, m.cfg.RevertDelay)}
	}

	m.ticketSeq++
	m.inflight = m.ticketSeq
	m.state = StateChecking
	return Effects{Submit: &Submission{Ticket: m.inflight, PNG: png, Expected: m.expected}}
}

func (m *Machine) arm(kind TimerKind, d time.Duration) *Timer {
	m.timerSeq++
	m.armed = &Timer{Kind: kind, Seq: m.timerSeq, Delay: d}
	t := *m.armed
	return &t
}

func (m *Machine) cancelTimer() {
	if m.armed != nil {
		m.timerSeq++
		m.armed = nil
	}
}

// hasSegment reports whether any stroke has at least two points.
func (m *Machine) hasSegment() bool {
	for _, s := range m.strokes {
		if len(s) > 1 {
			return true
		}
	}
	return false
}

func (m *Machine) clamp(p Point) Point {
	p.X = min(max(p.X, 0), float64(m.cfg.Width))
	p.Y = min(max(p.Y, 0), float64(m.cfg.Height))
	return p
}
