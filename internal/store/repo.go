package store

import "context"

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// AnswerEventData records one answered quiz question.
type AnswerEventData struct {
	SessionID    string
	QuestionID   int
	QuestionType string
	Answer       string
	Correct      bool
}

// AnswerSummary counts answers for the process lifetime.
type AnswerSummary struct {
	Sessions int
	Answered int
	Correct  int
}

// EventRepo provides append and aggregate access to in-process events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// AppendAnswer records an answered question.
	AppendAnswer(ctx context.Context, data AnswerEventData) error

	// AnswerSummary counts answered and correct questions.
	AnswerSummary(ctx context.Context) (AnswerSummary, error)
}
