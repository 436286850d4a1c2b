package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/llm"
)

func testFrame() *frame.Frame {
	return &frame.Frame{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, MIMEType: "image/jpeg", Source: frame.KindFile}
}

func TestGenerator_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("```json\n" + appleQuiz + "\n```")})
	g := NewGenerator(mock, DefaultConfig(), nil)

	res, err := g.Generate(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DetectedObject != "蘋果" || res.ToneQuestion().CorrectOptionID != ToneSecond {
		t.Fatalf("unexpected quiz: %+v", res)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected one provider call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Fatalf("expected a single user message, got %+v", req.Messages)
	}
	msg := req.Messages[0]
	if !strings.Contains(msg.Content, "create a Mandarin quiz") {
		t.Fatalf("prompt missing instructions: %q", msg.Content[:40])
	}
	if len(msg.Images) != 1 || msg.Images[0].MIMEType != "image/jpeg" {
		t.Fatalf("expected one jpeg image, got %+v", msg.Images)
	}
	if req.Schema != QuizSchema {
		t.Fatal("expected the quiz schema on the request")
	}
}

func TestGenerator_Failures(t *testing.T) {
	tests := []struct {
		name      string
		resp      llm.MockResponse
		malformed bool
		target    any
	}{
		{
			name:   "provider unavailable",
			resp:   llm.MockResponse{Err: &llm.ErrProviderUnavailable{StatusCode: 502}},
			target: new(*llm.ErrProviderUnavailable),
		},
		{
			name:   "rate limited",
			resp:   llm.MockResponse{Err: &llm.ErrRateLimit{}},
			target: new(*llm.ErrRateLimit),
		},
		{
			name:      "not json",
			resp:      llm.MockResponse{Content: json.RawMessage(`Sorry, I can't see an object.`)},
			malformed: true,
		},
		{
			name:   "fails validation",
			resp:   llm.MockResponse{Content: json.RawMessage(strings.Replace(appleQuiz, `"correctOptionId": "ˊ"`, `"correctOptionId": "2"`, 1))},
			target: new(*ValidationError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.resp)
			_, err := NewGenerator(mock, DefaultConfig(), nil).Generate(context.Background(), testFrame())
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("expected ErrGenerationFailed, got %v", err)
			}
			if got := errors.Is(err, ErrMalformedResponse); got != tt.malformed {
				t.Fatalf("errors.Is(err, ErrMalformedResponse) = %v", got)
			}
			if tt.target != nil && !errors.As(err, tt.target) {
				t.Fatalf("expected %T in chain, got %v", tt.target, err)
			}
			if mock.CallCount() != 1 {
				t.Fatalf("expected exactly one call, got %d", mock.CallCount())
			}
		})
	}
}

func TestGenerator_EmptyFrame(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := NewGenerator(mock, DefaultConfig(), nil).Generate(context.Background(), &frame.Frame{})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Fatal("no request should be sent for an empty frame")
	}
}

// A 500 from generateContent surfaces as a provider error.
func TestGenerator_HTTP500(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	p, err := llm.NewRESTProvider(llm.RESTConfig{APIKey: "k", BaseURL: server.URL + "/v1beta/models/gemini-2.0-flash:generateContent", HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, err = NewGenerator(p, DefaultConfig(), nil).Generate(context.Background(), testFrame())
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	var u *llm.ErrProviderUnavailable
	if !errors.As(err, &u) || u.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected provider status 500 in chain, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no retry, got %d requests", calls.Load())
	}
}

func TestGenerator_DemoProvider(t *testing.T) {
	res, err := NewGenerator(llm.NewDemoProvider(), DefaultConfig(), nil).Generate(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("demo quiz rejected: %v", err)
	}
	if res.DetectedObject != "蘋果" || len(res.Questions) != 3 {
		t.Fatalf("unexpected demo quiz: %+v", res)
	}
	if !NewToneChecker(llm.NewDemoProvider(), nil).Check(context.Background(), []byte{0x89, 'P', 'N', 'G'}, ToneSecond) {
		t.Fatal("demo tone check should match")
	}
}
