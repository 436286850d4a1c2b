package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event
// and writes a structured log line for it.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with event logging. A nil repo or logger
// disables that sink.
func WithLogging(p Provider, providerName string, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: providerName, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	kv := []any{
		"provider", data.Provider,
		"model", data.Model,
		"purpose", purpose,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
	}
	if err != nil {
		l.log.Warn("llm request failed", append(kv, "error", err)...)
	} else {
		l.log.Debug("llm request", kv...)
	}

	// The request already happened; a failed append must not fail it.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("append llm event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
// Images are summarised by type and size rather than dumped.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n")
		for _, img := range m.Images {
			fmt.Fprintf(&b, "[image %s, %d bytes]\n", img.MIMEType, len(img.Data))
		}
		b.WriteString("\n")
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(def)
			b.WriteString("\n")
		}
	}

	return b.String()
}
