package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// eventRepo implements EventRepo with gorm.
type eventRepo struct {
	db *gorm.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	row := &LLMRequestEvent{
		Provider:     data.Provider,
		Model:        data.Model,
		Purpose:      data.Purpose,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var out []PurposeUsage
	err := r.db.WithContext(ctx).
		Model(&LLMRequestEvent{}).
		Select(`purpose,
			COUNT(*) AS calls,
			SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures,
			SUM(input_tokens) AS input_tokens,
			SUM(output_tokens) AS output_tokens,
			CAST(AVG(latency_ms) AS INTEGER) AS avg_latency_ms`).
		Group("purpose").
		Order("purpose").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var out []ModelUsage
	err := r.db.WithContext(ctx).
		Model(&LLMRequestEvent{}).
		Select(`model,
			COUNT(*) AS calls,
			SUM(input_tokens) AS input_tokens,
			SUM(output_tokens) AS output_tokens`).
		Group("model").
		Order("model").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}

func (r *eventRepo) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	row := &AnswerEvent{
		SessionID:    data.SessionID,
		QuestionID:   data.QuestionID,
		QuestionType: data.QuestionType,
		Answer:       data.Answer,
		Correct:      data.Correct,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AnswerSummary(ctx context.Context) (AnswerSummary, error) {
	var s AnswerSummary
	err := r.db.WithContext(ctx).
		Model(&AnswerEvent{}).
		Select(`COUNT(DISTINCT session_id) AS sessions,
			COUNT(*) AS answered,
			COALESCE(SUM(correct), 0) AS correct`).
		Scan(&s).Error
	if err != nil {
		return AnswerSummary{}, fmt.Errorf("query answer summary: %w", err)
	}
	return s, nil
}
