package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultRESTBaseURL is the generateContent endpoint used when none is configured.
const DefaultRESTBaseURL = "https://ai.juguang.chat/v1beta/models/gemini-2.0-flash:generateContent"

// max bytes read from an error response body
const restErrorBodyLimit = 4 << 10

// RESTProvider calls a Gemini-compatible generateContent endpoint directly.
// The API key travels as the "key" query parameter, which lets it target
// relays that speak the Gemini wire format but are not Google endpoints.
type RESTProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewRESTProvider creates a provider posting to cfg.BaseURL.
func NewRESTProvider(cfg RESTConfig) (*RESTProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rest API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultRESTBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &RESTProvider{
		client:  client,
		baseURL: base,
		apiKey:  cfg.APIKey,
		model:   modelFromURL(base),
	}, nil
}

type restRequest struct {
	Contents []restContent `json:"contents"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *restInline `json:"inline_data,omitempty"`
}

type restInline struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type restResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

func (p *RESTProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(buildRESTRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: redactKey(err, p.apiKey)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, restErrorBodyLimit))
		statusErr := fmt.Errorf("%s: %s", httpResp.Status, strings.TrimSpace(string(snippet)))
		if httpResp.StatusCode == http.StatusTooManyRequests {
			return nil, &ErrRateLimit{
				RetryAfter: parseRetryAfter(httpResp.Header.Get("Retry-After")),
				Err:        statusErr,
			}
		}
		return nil, &ErrProviderUnavailable{StatusCode: httpResp.StatusCode, Err: statusErr}
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("read response: %w", err)}
	}

	var parsed restResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("no candidate text")}
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("empty candidate text")}
	}

	resp := &Response{
		Content: json.RawMessage(text),
		Usage: Usage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  parsed.UsageMetadata.TotalTokenCount,
		},
		Model:      p.model,
		StopReason: "end",
	}
	if parsed.ModelVersion != "" {
		resp.Model = parsed.ModelVersion
	}
	if parsed.Candidates[0].FinishReason == "MAX_TOKENS" {
		resp.StopReason = "max_tokens"
	}
	return resp, nil
}

func (p *RESTProvider) ModelID() string {
	return p.model
}

func (p *RESTProvider) endpoint() string {
	sep := "?"
	if strings.Contains(p.baseURL, "?") {
		sep = "&"
	}
	return p.baseURL + sep + "key=" + url.QueryEscape(p.apiKey)
}

// buildRESTRequest flattens the request into generateContent contents.
// The system prompt becomes the leading text part of the first message.
func buildRESTRequest(req Request) restRequest {
	out := restRequest{Contents: make([]restContent, 0, len(req.Messages))}
	for i, m := range req.Messages {
		var parts []restPart
		text := m.Content
		if i == 0 && req.System != "" {
			text = req.System + "\n\n" + text
		}
		if text != "" {
			parts = append(parts, restPart{Text: text})
		}
		for _, img := range m.Images {
			parts = append(parts, restPart{InlineData: &restInline{MIMEType: img.MIMEType, Data: img.Base64()}})
		}
		c := restContent{Parts: parts}
		if m.Role == RoleAssistant {
			c.Role = "model"
		}
		out.Contents = append(out.Contents, c)
	}
	return out
}

// modelFromURL extracts "gemini-2.0-flash" from ".../models/gemini-2.0-flash:generateContent".
func modelFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "rest"
	}
	seg := u.Path[strings.LastIndexByte(u.Path, '/')+1:]
	if i := strings.IndexByte(seg, ':'); i >= 0 {
		seg = seg[:i]
	}
	if seg == "" {
		return "rest"
	}
	return seg
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// redactKey strips the API key from transport errors, which embed the URL.
// The original error stays reachable through Unwrap.
func redactKey(err error, key string) error {
	escaped := url.QueryEscape(key)
	if key == "" || !strings.Contains(err.Error(), escaped) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), escaped, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
