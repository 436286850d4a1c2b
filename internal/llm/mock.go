package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider. Tests queue canned responses
// that are returned in FIFO order; every request is recorded.
//
// When the queue is empty, Fallback answers instead if set. Otherwise the
// call fails with ErrProviderUnavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	Fallback func(ctx context.Context, req Request) MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewDemoProvider returns a provider that works offline: every photo is an
// apple and every drawing is judged correct. It backs --provider mock.
func NewDemoProvider() *MockProvider {
	return &MockProvider{Fallback: demoResponse}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
		m.mu.Unlock()
	case m.Fallback != nil:
		fallback := m.Fallback
		m.mu.Unlock()
		resp = fallback(ctx, req)
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func demoResponse(ctx context.Context, _ Request) MockResponse {
	switch PurposeFrom(ctx) {
	case PurposeToneCheck:
		return MockResponse{Content: json.RawMessage(`{"isMatch": true}`)}
	case PurposeQuizGeneration:
		return MockResponse{Content: json.RawMessage(demoQuiz)}
	}
	return MockResponse{Err: &ErrInvalidResponse{Err: fmt.Errorf("mock has no answer for purpose %q", PurposeFrom(ctx))}}
}

const demoQuiz = `{
  "detectedObject": "蘋果",
  "pinyin": "píng guǒ",
  "englishMeaning": "apple",
  "questions": [
    {
      "id": 1,
      "type": "initial",
      "questionText": "『蘋』字的聲母是？",
      "options": [{"id": "a", "text": "p"}, {"id": "b", "text": "b"}, {"id": "c", "text": "m"}, {"id": "d", "text": "f"}],
      "correctOptionId": "a",
      "explanation": "『蘋』的聲母是送氣的 p"
    },
    {
      "id": 2,
      "type": "final",
      "questionText": "『蘋』字的韻母是？",
      "options": [{"id": "a", "text": "ing"}, {"id": "b", "text": "eng"}, {"id": "c", "text": "ang"}, {"id": "d", "text": "ong"}],
      "correctOptionId": "a",
      "explanation": "『蘋』的韻母是 ing"
    },
    {
      "id": 3,
      "type": "tone",
      "questionText": "請畫出『蘋』字的聲調符號",
      "options": [],
      "correctOptionId": "ˊ",
      "explanation": "『蘋』是第二聲，聲調符號是 ˊ"
    }
  ]
}`
