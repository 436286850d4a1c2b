package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tonesnap/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPrintSummary_Empty(t *testing.T) {
	s := openStore(t)
	var buf bytes.Buffer
	require.NoError(t, printSummary(context.Background(), &buf, s.EventRepo()))
	assert.Empty(t, buf.String())
}

func TestPrintSummary(t *testing.T) {
	s := openStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []store.LLMRequestEventData{
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "quiz-generation", InputTokens: 1000, OutputTokens: 400, LatencyMs: 900, Success: true},
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "tone-check", InputTokens: 200, OutputTokens: 10, LatencyMs: 300, Success: true},
		{Provider: "openrouter", Model: "some/unpriced-model", Purpose: "tone-check", LatencyMs: 100, Success: false},
	} {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}
	require.NoError(t, repo.AppendAnswer(ctx, store.AnswerEventData{SessionID: "s1", QuestionID: 1, QuestionType: "initial", Answer: "a", Correct: true}))
	require.NoError(t, repo.AppendAnswer(ctx, store.AnswerEventData{SessionID: "s1", QuestionID: 2, QuestionType: "final", Answer: "b", Correct: false}))

	var buf bytes.Buffer
	require.NoError(t, printSummary(ctx, &buf, repo))
	out := buf.String()

	assert.Contains(t, out, "Answered 2 questions in 1 rounds, 1 correct.")
	assert.Contains(t, out, "quiz-generation")
	assert.Contains(t, out, "tone-check")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "Pricing unavailable for: some/unpriced-model")
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

func TestLoadPNG(t *testing.T) {
	_, err := loadPNG(t.TempDir() + "/missing.png")
	assert.Error(t, err)
}
