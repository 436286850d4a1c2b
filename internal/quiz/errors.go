package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationFailed wraps every failure of Generator.Generate.
	ErrGenerationFailed = errors.New("quiz generation failed")

	// ErrMalformedResponse means the model output could not be parsed even
	// after repair.
	ErrMalformedResponse = errors.New("malformed model response")
)

// MalformedResponseError carries the repaired text that failed to parse.
type MalformedResponseError struct {
	Repaired string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedResponse, e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}

// ValidationError describes why a parsed quiz was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// generationError tags err with ErrGenerationFailed while keeping the
// original chain reachable through errors.Is and errors.As.
func generationError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGenerationFailed, stage, err)
}
