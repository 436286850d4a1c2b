package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with event
// logging. No retry middleware is installed: one Generate call is one
// request on the wire.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderREST:
		base, err = NewRESTProvider(cfg.REST)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewDemoProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var p Provider = base
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return WithLogging(p, cfg.Provider, eventRepo, log), nil
}
