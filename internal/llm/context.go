package llm

import "context"

type contextKey struct{ name string }

var purposeKey = contextKey{"purpose"}

// Purpose labels used by the event log.
const (
	PurposeQuizGeneration = "quiz-generation"
	PurposeToneCheck      = "tone-check"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
