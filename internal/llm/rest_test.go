package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestRESTProvider(t *testing.T, handler http.HandlerFunc) (*RESTProvider, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	p, err := NewRESTProvider(RESTConfig{
		APIKey:     "secret key",
		BaseURL:    server.URL + "/v1beta/models/gemini-2.0-flash:generateContent",
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p, &calls
}

func candidateBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"parts": []map[string]any{{"text": text}}, "role": "model"},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     1290,
			"candidatesTokenCount": 210,
			"totalTokenCount":      1500,
		},
	}
}

func TestRESTProvider_RequestShape(t *testing.T) {
	var (
		gotKey    string
		gotMethod string
		gotPath   string
		gotBody   map[string]any
	)
	p, calls := newTestRESTProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(candidateBody(`{"isMatch": true}`))
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{
			Role:    RoleUser,
			Content: "Analyze",
			Images:  []Image{{MIMEType: "image/jpeg", Data: []byte("jpeg")}},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one request, got %d", calls.Load())
	}
	if gotMethod != http.MethodPost || gotKey != "secret key" {
		t.Fatalf("method=%s key=%q", gotMethod, gotKey)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if _, ok := gotBody["generationConfig"]; ok {
		t.Fatal("request must not carry a generationConfig")
	}

	contents := gotBody["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected one content, got %d", len(contents))
	}
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected text + inline_data parts, got %d", len(parts))
	}
	if parts[0].(map[string]any)["text"] != "Analyze" {
		t.Fatalf("first part = %v", parts[0])
	}
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	if inline["mime_type"] != "image/jpeg" || inline["data"] != "anBlZw==" {
		t.Fatalf("inline_data = %v", inline)
	}

	if resp.Text() != `{"isMatch": true}` {
		t.Fatalf("content = %q", resp.Text())
	}
	if resp.Usage.InputTokens != 1290 || resp.Usage.TotalTokens != 1500 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if resp.Model != "gemini-2.0-flash" || p.ModelID() != "gemini-2.0-flash" {
		t.Fatalf("model = %q / %q", resp.Model, p.ModelID())
	}
}

func TestRESTProvider_SystemPromptIsLeadingText(t *testing.T) {
	req := buildRESTRequest(Request{
		System:   "rules",
		Messages: []Message{{Role: RoleUser, Content: "look"}},
	})
	if got := req.Contents[0].Parts[0].Text; got != "rules\n\nlook" {
		t.Fatalf("text = %q", got)
	}
}

func TestRESTProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				if !errors.As(err, &rl) {
					t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
				}
				if rl.RetryAfter != 7*time.Second {
					t.Fatalf("RetryAfter = %s", rl.RetryAfter)
				}
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			},
			check: func(t *testing.T, err error) {
				var u *ErrProviderUnavailable
				if !errors.As(err, &u) || u.StatusCode != http.StatusServiceUnavailable {
					t.Fatalf("expected ErrProviderUnavailable(503), got %T (%v)", err, err)
				}
				if !strings.Contains(err.Error(), "overloaded") {
					t.Fatalf("error should carry the body snippet: %v", err)
				}
			},
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			check: func(t *testing.T, err error) {
				var u *ErrProviderUnavailable
				if !errors.As(err, &u) || u.StatusCode != http.StatusForbidden {
					t.Fatalf("expected ErrProviderUnavailable(403), got %T (%v)", err, err)
				}
			},
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":[]}`))
			},
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
				}
			},
		},
		{
			name: "empty text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(candidateBody(""))
			},
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
				}
			},
		},
		{
			name: "envelope not JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>gateway</html>`))
			},
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, calls := newTestRESTProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
			if calls.Load() != 1 {
				t.Fatalf("expected exactly one request, got %d", calls.Load())
			}
		})
	}
}

func TestRESTProvider_TransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p, err := NewRESTProvider(RESTConfig{APIKey: "topsecret", BaseURL: url + "/models/m:generateContent"})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var u *ErrProviderUnavailable
	if !errors.As(err, &u) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
	if strings.Contains(err.Error(), "topsecret") {
		t.Fatalf("error leaks the API key: %v", err)
	}
}

func TestRESTProvider_ContextCancelled(t *testing.T) {
	p, _ := newTestRESTProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestModelFromURL(t *testing.T) {
	tests := map[string]string{
		DefaultRESTBaseURL: "gemini-2.0-flash",
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent": "gemini-2.5-flash",
		"https://relay.example/": "rest",
	}
	for in, want := range tests {
		if got := modelFromURL(in); got != want {
			t.Errorf("modelFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter("3"); d != 3*time.Second {
		t.Fatalf("seconds form: %s", d)
	}
	if d := parseRetryAfter(""); d != 0 {
		t.Fatalf("empty: %s", d)
	}
	if d := parseRetryAfter("soon"); d != 0 {
		t.Fatalf("garbage: %s", d)
	}
}
