package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func anthropicMessage(text string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_SendsImageBlock(t *testing.T) {
	var body struct {
		System   []map[string]any `json:"system"`
		Messages []struct {
			Content []map[string]any `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"detectedObject":"蘋果"}`))
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System: "You are a Mandarin teacher.",
		Messages: []Message{{
			Role:    RoleUser,
			Content: "Analyze this image.",
			Images:  []Image{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	if body.MaxTokens != defaultAnthropicMaxTokens {
		t.Errorf("max_tokens = %d, want %d", body.MaxTokens, defaultAnthropicMaxTokens)
	}
	if len(body.Messages) != 1 || len(body.Messages[0].Content) != 2 {
		t.Fatalf("expected one message with image + text blocks, got %+v", body.Messages)
	}
	img := body.Messages[0].Content[0]
	if img["type"] != "image" {
		t.Fatalf("first block type = %v, want image", img["type"])
	}
	src := img["source"].(map[string]any)
	if src["media_type"] != "image/jpeg" || src["data"] != "/9j/" {
		t.Fatalf("unexpected image source %v", src)
	}
	if body.Messages[0].Content[1]["type"] != "text" {
		t.Fatalf("second block should be text, got %v", body.Messages[0].Content[1])
	}
}

func TestAnthropicProvider_ErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		errTyp string
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, "rate_limit_error", func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", http.StatusInternalServerError, "api_error", func(err error) bool {
			var u *ErrProviderUnavailable
			return errors.As(err, &u)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			handler := func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": tt.errTyp, "message": "nope"},
				})
			}

			p := newTestAnthropicProvider(t, handler)
			_, err := p.Generate(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "test"}},
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Fatalf("unexpected error type: %T (%v)", err, err)
			}
			if got := calls.Load(); got != 1 {
				t.Fatalf("expected exactly 1 request, got %d", got)
			}
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
