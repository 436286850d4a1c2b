package quiz

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/abhisek/tonesnap/internal/frame"
	"github.com/abhisek/tonesnap/internal/llm"
	"github.com/abhisek/tonesnap/internal/logger"
)

// Config controls the behavior of the Generator.
type Config struct {
	// Normalizer repairs and parses model output. Nil means the default.
	Normalizer *Normalizer

	// Validators run in order on every parsed quiz; the first failure
	// stops the chain.
	Validators []Validator

	// Schema asks providers with structured output for this shape. The
	// rest provider ignores it.
	Schema *llm.Schema

	// MaxTokens is the token budget for the response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the standard repair rules and validator chain.
func DefaultConfig() Config {
	return Config{
		Normalizer:  DefaultNormalizer(),
		Validators:  DefaultValidators(),
		Schema:      QuizSchema,
		MaxTokens:   2048,
		Temperature: 0.4,
	}
}

// Generator produces quizzes from frames with exactly one model call per
// Generate. It never retries.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewGenerator creates a Generator. A nil log discards output.
func NewGenerator(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	if cfg.Normalizer == nil {
		cfg.Normalizer = DefaultNormalizer()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// Generate asks the model for a quiz about the object in f. Every error
// satisfies errors.Is(err, ErrGenerationFailed).
func (g *Generator) Generate(ctx context.Context, f *frame.Frame) (*AnalysisResult, error) {
	if f == nil || len(f.Data) == 0 {
		return nil, generationError("input", errors.New("empty frame"))
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGeneration)

	req := llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: quizPrompt,
			Images:  []llm.Image{{MIMEType: f.MIMEType, Data: f.Data}},
		}},
		Schema:      g.config.Schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, generationError("request", err)
	}

	repaired := g.config.Normalizer.Repair(resp.Text())
	res, err := parse(repaired)
	if err != nil {
		g.log.Warn("quiz response could not be parsed", "model", resp.Model, "error", err)
		return nil, generationError("parse", err)
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(res, json.RawMessage(repaired)); verr != nil {
			g.log.Warn("quiz rejected", "validator", verr.Validator, "reason", verr.Message)
			return nil, generationError("validate", verr)
		}
	}

	g.log.Debug("quiz generated", "object", res.DetectedObject, "pinyin", res.Pinyin, "model", resp.Model)
	return res, nil
}
