package quiz

import (
	"github.com/google/uuid"

	"github.com/abhisek/tonesnap/internal/grading"
)

// gradingTimerMsg is a grading timer firing. The machine ignores it when
// the timer has been superseded.
type gradingTimerMsg struct {
	Session  uuid.UUID
	Question int
	Timer    grading.Timer
}

// toneVerdictMsg carries the tone checker's answer for one submission.
type toneVerdictMsg struct {
	Session  uuid.UUID
	Question int
	Ticket   grading.Ticket
	Match    bool
}

// spokenMsg is sent when an utterance ends.
type spokenMsg struct {
	Err error
}
