package store

import (
	"context"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"synchronous", "0"}, // OFF
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		if err := s.db.Raw("PRAGMA " + tt.pragma).Row().Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenMigratesTables(t *testing.T) {
	s := openTestStore(t)
	m := s.db.Migrator()
	for _, model := range []any{&LLMRequestEvent{}, &AnswerEvent{}} {
		if !m.HasTable(model) {
			t.Errorf("table for %T missing", model)
		}
	}
	if !m.HasIndex(&LLMRequestEvent{}, "idx_llm_request_events_purpose") {
		t.Error("purpose index missing")
	}
}

func TestAppendLLMRequest(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "quiz-generation", InputTokens: 900, OutputTokens: 300, LatencyMs: 1200, Success: true, ResponseBody: `{"pinyin":"píng guǒ"}`},
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "tone-check", InputTokens: 200, OutputTokens: 10, LatencyMs: 400, Success: true},
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "tone-check", LatencyMs: 600, Success: false, ErrorMessage: "LLM provider unavailable (status 503)"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	var rows []LLMRequestEvent
	if err := s.db.Order("sequence DESC").Find(&rows).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rows))
	}
	if rows[0].Sequence <= rows[1].Sequence {
		t.Fatalf("expected increasing sequences, got %d, %d", rows[1].Sequence, rows[0].Sequence)
	}
	if rows[0].Success || rows[0].ErrorMessage == "" {
		t.Fatalf("newest event should be the failure, got %+v", rows[0])
	}
	if rows[2].ResponseBody != `{"pinyin":"píng guǒ"}` {
		t.Fatalf("response body not preserved: %q", rows[2].ResponseBody)
	}
	for _, r := range rows {
		if r.TimestampMs == 0 {
			t.Fatalf("timestamp not set on %+v", r)
		}
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "quiz-generation", InputTokens: 100, OutputTokens: 50, LatencyMs: 100, Success: true},
		{Provider: "rest", Model: "gemini-2.0-flash", Purpose: "quiz-generation", InputTokens: 300, OutputTokens: 150, LatencyMs: 300, Success: false},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "tone-check", InputTokens: 10, OutputTokens: 1, LatencyMs: 50, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("expected 2 purposes, got %d", len(byPurpose))
	}
	q := byPurpose[0]
	if q.Purpose != "quiz-generation" || q.Calls != 2 || q.Failures != 1 || q.InputTokens != 400 || q.AvgLatencyMs != 200 {
		t.Fatalf("unexpected quiz-generation usage %+v", q)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gemini-2.0-flash" || byModel[0].OutputTokens != 200 {
		t.Fatalf("unexpected model usage %+v", byModel)
	}
}

func TestAnswerSummary(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	empty, err := repo.AnswerSummary(ctx)
	if err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if empty != (AnswerSummary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}

	for _, a := range []AnswerEventData{
		{SessionID: "a", QuestionID: 1, QuestionType: "initial", Answer: "a", Correct: true},
		{SessionID: "a", QuestionID: 2, QuestionType: "final", Answer: "c", Correct: false},
		{SessionID: "b", QuestionID: 3, QuestionType: "tone", Answer: "ˊ", Correct: true},
	} {
		if err := repo.AppendAnswer(ctx, a); err != nil {
			t.Fatalf("append answer: %v", err)
		}
	}

	got, err := repo.AnswerSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := AnswerSummary{Sessions: 2, Answered: 3, Correct: 2}
	if got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}
}

func TestCloseDiscardsMemoryDatabase(t *testing.T) {
	dsn := "file:close_discards?mode=memory&cache=shared"
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(context.Background(), LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "x", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s2, err := Open(dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	usage, err := s2.EventRepo().LLMUsageByPurpose(context.Background())
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 0 {
		t.Fatalf("expected empty database after close, got %+v", usage)
	}
}
