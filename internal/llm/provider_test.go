package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"isMatch": true}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"isMatch": false}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text() != `{"isMatch": true}` {
		t.Fatalf("unexpected first content %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != `{"isMatch": false}` {
		t.Fatalf("unexpected second content %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello", Images: []Image{{MIMEType: "image/jpeg", Data: []byte{1}}}}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
	if len(mock.Calls[0].Messages[0].Images) != 1 {
		t.Fatal("expected the image to be recorded with the call")
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestMockProvider_FallbackAfterQueue(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"queued": true}`)})
	mock.Fallback = func(context.Context, Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`{"fallback": true}`)}
	}

	first, err := mock.Generate(context.Background(), Request{})
	if err != nil || first.Text() != `{"queued": true}` {
		t.Fatalf("expected queued response first, got %v %v", first.Text(), err)
	}
	second, err := mock.Generate(context.Background(), Request{})
	if err != nil || second.Text() != `{"fallback": true}` {
		t.Fatalf("expected fallback response, got %v %v", second.Text(), err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls recorded, got %d", mock.CallCount())
	}
}

func TestDemoProvider_AnswersByPurpose(t *testing.T) {
	demo := NewDemoProvider()

	resp, err := demo.Generate(WithPurpose(context.Background(), PurposeToneCheck), Request{})
	if err != nil || resp.Text() != `{"isMatch": true}` {
		t.Fatalf("unexpected tone-check answer: %v %v", resp.Text(), err)
	}

	_, err = demo.Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse without a purpose, got %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeToneCheck)
	if p := PurposeFrom(ctx); p != "tone-check" {
		t.Fatalf("expected 'tone-check', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"rest without key", Config{Provider: ProviderREST, REST: RESTConfig{BaseURL: DefaultRESTBaseURL}}, true},
		{"rest without base URL", Config{Provider: ProviderREST, REST: RESTConfig{APIKey: "k"}}, true},
		{"rest with relative URL", Config{Provider: ProviderREST, REST: RESTConfig{APIKey: "k", BaseURL: "/v1beta"}}, true},
		{"rest complete", Config{Provider: ProviderREST, REST: RESTConfig{APIKey: "k", BaseURL: DefaultRESTBaseURL}}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfigUsesREST(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderREST {
		t.Fatalf("default provider = %q, want rest", cfg.Provider)
	}
	if cfg.REST.BaseURL != DefaultRESTBaseURL {
		t.Fatalf("default base URL = %q", cfg.REST.BaseURL)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("default config without a key must not validate")
	}
}

func TestImageEncoding(t *testing.T) {
	img := Image{MIMEType: "image/png", Data: []byte("hi")}
	if img.Base64() != "aGk=" {
		t.Fatalf("Base64() = %q", img.Base64())
	}
	if img.DataURL() != "data:image/png;base64,aGk=" {
		t.Fatalf("DataURL() = %q", img.DataURL())
	}
}
