package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive the model's text.
type Provider interface {
	// Generate sends a prompt (optionally with images) to the model and
	// returns its output. The request's Schema field, when set, asks the
	// provider to use its native structured output mechanism. Providers do
	// not validate the output; callers repair and validate it themselves.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	// Providers without a system slot prepend it to the first user message.
	System string

	// Messages is the conversation history. Quiz generation and tone checks
	// are single-turn: one user message carrying one image.
	Messages []Message

	// Schema is the JSON Schema the response should conform to.
	// When nil, the response Content is raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string

	// Images are sent inline after Content, in order.
	Images []Image
}

// Image is an inline, already encoded image attached to a message.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (used as schema name for OpenAI and as
	// the compiled-schema cache key). Kebab-case, e.g. "mandarin-quiz".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the model's text output, unmodified. It is usually JSON
	// but may be wrapped in prose or code fences.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Text returns the response content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
