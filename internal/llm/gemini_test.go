package llm

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pinyin": map[string]any{"type": "string"},
			"id":     map[string]any{"type": "integer"},
			"type":   map[string]any{"type": "string", "enum": []string{"initial", "final", "tone"}},
			"options": map[string]any{
				"type":     "array",
				"minItems": 0,
				"maxItems": 4,
				"items":    map[string]any{"type": "string"},
			},
		},
		"required": []any{"pinyin", "id"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["id"].Type != genai.TypeInteger {
		t.Fatalf("expected INTEGER for id, got %s", schema.Properties["id"].Type)
	}
	if got := schema.Properties["type"].Enum; len(got) != 3 || got[2] != "tone" {
		t.Fatalf("unexpected enum %v", got)
	}
	opts := schema.Properties["options"]
	if opts.Type != genai.TypeArray || opts.Items.Type != genai.TypeString {
		t.Fatalf("unexpected options schema %+v", opts)
	}
	if opts.MaxItems == nil || *opts.MaxItems != 4 || opts.MinItems == nil || *opts.MinItems != 0 {
		t.Fatalf("unexpected item bounds %v %v", opts.MinItems, opts.MaxItems)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiContents_InlineImage(t *testing.T) {
	contents := buildGeminiContents([]Message{{
		Role:    RoleUser,
		Content: "Analyze",
		Images:  []Image{{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}}},
	}})

	if len(contents) != 1 || contents[0].Role != genai.RoleUser {
		t.Fatalf("unexpected contents %+v", contents)
	}
	parts := contents[0].Parts
	if len(parts) != 2 || parts[0].Text != "Analyze" {
		t.Fatalf("expected text then image, got %+v", parts)
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("expected inline jpeg, got %+v", parts[1])
	}
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	if err := mapGeminiError(genai.APIError{Code: http.StatusTooManyRequests}); !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T", err)
	}

	var u *ErrProviderUnavailable
	err := mapGeminiError(genai.APIError{Code: http.StatusServiceUnavailable})
	if !errors.As(err, &u) || u.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected ErrProviderUnavailable(503), got %T (%v)", err, err)
	}

	if err := mapGeminiError(errors.New("dial tcp: refused")); !errors.As(err, &u) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}
