package quiz

import (
	"context"

	"github.com/abhisek/tonesnap/internal/llm"
	"github.com/abhisek/tonesnap/internal/logger"
)

// ToneChecker asks the model whether a drawing shows a tone mark.
type ToneChecker struct {
	provider   llm.Provider
	normalizer *Normalizer
	log        *logger.Logger
}

// NewToneChecker creates a ToneChecker. A nil log discards output.
func NewToneChecker(provider llm.Provider, log *logger.Logger) *ToneChecker {
	if log == nil {
		log = logger.Nop()
	}
	return &ToneChecker{
		provider:   provider,
		normalizer: &Normalizer{Rules: []RepairRule{StripCodeFence{}, ExtractObject{}, TrailingComma{}}},
		log:        log,
	}
}

type toneVerdict struct {
	IsMatch *bool `json:"isMatch"`
}

// Check sends the PNG drawing and reports whether it matches expected.
// Any failure to get a clear answer counts as no match, so the caller can
// always let the learner draw again.
func (c *ToneChecker) Check(ctx context.Context, png []byte, expected string) bool {
	if len(png) == 0 {
		return false
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeToneCheck)

	resp, err := c.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: tonePrompt(expected),
			Images:  []llm.Image{{MIMEType: "image/png", Data: png}},
		}},
		Schema:    toneCheckSchema,
		MaxTokens: 64,
	})
	if err != nil {
		c.log.Warn("tone check unavailable", "expected", expected, "error", err)
		return false
	}

	var v toneVerdict
	if err := decodeSingle(c.normalizer.Repair(resp.Text()), &v); err != nil {
		c.log.Warn("tone check answer unreadable", "expected", expected, "error", err)
		return false
	}
	return v.IsMatch != nil && *v.IsMatch
}
