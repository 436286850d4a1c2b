package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]any{
		"api_key", "abc123",
		"key", "xyz",
		"Authorization", "Bearer t",
		"model", "gemini-2.0-flash",
		"dangling",
	})

	assert.Equal(t, []any{
		"api_key", "[REDACTED]",
		"key", "[REDACTED]",
		"Authorization", "[REDACTED]",
		"model", "gemini-2.0-flash",
		"dangling",
	}, got)
}

func TestSanitizeNestedMap(t *testing.T) {
	got := sanitizeValue("config", map[string]any{"api_key": "s", "device": "/dev/video0"})
	assert.Equal(t, map[string]any{"api_key": "[REDACTED]", "device": "/dev/video0"}, got)
}

func TestLoggerRedactsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("session", "s1").Info("request", "token", "secret-value", "purpose", "quiz-generation")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["token"])
	assert.Equal(t, "quiz-generation", fields["purpose"])
	assert.Equal(t, "s1", fields["session"])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("dropped", "k", "v")
	l.Sync()
}
