package llm

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderREST       = "rest"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use. Default: "rest".
	Provider string

	REST       RESTConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds a single Generate call. Default: 60s.
	Timeout time.Duration
}

// RESTConfig configures the raw generateContent provider.
type RESTConfig struct {
	APIKey  string
	BaseURL string // Default: DefaultRESTBaseURL

	// HTTPClient overrides the transport; tests point it at httptest.
	HTTPClient *http.Client
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-001"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderREST,
		REST:       RESTConfig{BaseURL: DefaultRESTBaseURL},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Timeout:    60 * time.Second,
	}
}

// Validate checks that the selected provider has what it needs to send a
// request. It runs before any provider is constructed.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderREST:
		if c.REST.APIKey == "" {
			return fmt.Errorf("an API key is required for the rest provider")
		}
		if c.REST.BaseURL == "" {
			return fmt.Errorf("a base URL is required for the rest provider")
		}
		if u, err := url.Parse(c.REST.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base URL %q", c.REST.BaseURL)
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("an API key is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("an API key is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("an API key is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("an API key is required for the openrouter provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
