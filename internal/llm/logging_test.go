package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/tonesnap/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

// recordingRepo keeps appended LLM events in memory.
type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"isMatch": true}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{StatusCode: 503}},
	)
	p := WithLogging(mock, "mock", repo, nil)

	ctx := WithPurpose(context.Background(), PurposeToneCheck)
	req := Request{Messages: []Message{{Role: RoleUser, Content: "draw", Images: []Image{{MIMEType: "image/png", Data: make([]byte, 64)}}}}}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("second call should fail")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if failed.Success || !strings.Contains(failed.ErrorMessage, "503") {
		t.Fatalf("unexpected failed event %+v", failed)
	}
	if !ok.Success || ok.Purpose != "tone-check" || ok.InputTokens != 12 || ok.ResponseBody != `{"isMatch": true}` {
		t.Fatalf("unexpected success event %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[image image/png, 64 bytes]") {
		t.Fatalf("request body should summarise the image: %q", ok.RequestBody)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, &ErrProviderUnavailable{Err: ctx.Err()}
}

func (slowProvider) ModelID() string { return "slow" }

func TestTimeoutProvider(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p.ModelID() != "slow" {
		t.Fatalf("ModelID() = %q", p.ModelID())
	}
}

func TestNewProvider(t *testing.T) {
	repo := openEventRepo(t)

	if _, err := NewProvider(context.Background(), Config{Provider: ProviderREST}, repo, nil); err == nil {
		t.Fatal("expected validation error for missing key")
	}

	cfg := DefaultConfig()
	cfg.REST.APIKey = "k"
	p, err := NewProvider(context.Background(), cfg, repo, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, ok := p.(*LoggingProvider); !ok {
		t.Fatalf("expected logging decorator on the outside, got %T", p)
	}
	if p.ModelID() != "gemini-2.0-flash" {
		t.Fatalf("ModelID() = %q", p.ModelID())
	}
}
