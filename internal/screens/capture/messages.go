package capture

import (
	"github.com/google/uuid"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/quiz"
	sess "github.com/abhisek/tonesnap/internal/session"
)

// cameraOpenedMsg reports whether the capture device can be used.
type cameraOpenedMsg struct {
	Err error
}

// frameCapturedMsg carries a frame from the camera or a file.
type frameCapturedMsg struct {
	Kind  frame.Kind
	Frame *frame.Frame
	Err   error
}

// analysisDoneMsg carries a generation result back to the round that
// asked for it.
type analysisDoneMsg struct {
	Session uuid.UUID
	Ticket  sess.Ticket
	Result  *quiz.AnalysisResult
	Err     error
}
