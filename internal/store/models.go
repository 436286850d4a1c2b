package store

// LLMRequestEvent is one row of the LLM call log.
type LLMRequestEvent struct {
	Sequence     int64  `gorm:"column:sequence;primaryKey;autoIncrement"`
	TimestampMs  int64  `gorm:"column:timestamp_ms;not null;autoCreateTime:milli"`
	Provider     string `gorm:"column:provider;not null"`
	Model        string `gorm:"column:model;not null"`
	Purpose      string `gorm:"column:purpose;not null;index"`
	InputTokens  int    `gorm:"column:input_tokens;not null"`
	OutputTokens int    `gorm:"column:output_tokens;not null"`
	LatencyMs    int64  `gorm:"column:latency_ms;not null"`
	Success      bool   `gorm:"column:success;not null"`
	ErrorMessage string `gorm:"column:error_message;not null"`
	RequestBody  string `gorm:"column:request_body;not null"`
	ResponseBody string `gorm:"column:response_body;not null"`
}

func (LLMRequestEvent) TableName() string { return "llm_request_events" }

// AnswerEvent is one answered quiz question.
type AnswerEvent struct {
	Sequence     int64  `gorm:"column:sequence;primaryKey;autoIncrement"`
	TimestampMs  int64  `gorm:"column:timestamp_ms;not null;autoCreateTime:milli"`
	SessionID    string `gorm:"column:session_id;not null;index"`
	QuestionID   int    `gorm:"column:question_id;not null"`
	QuestionType string `gorm:"column:question_type;not null"`
	Answer       string `gorm:"column:answer;not null"`
	Correct      bool   `gorm:"column:correct;not null"`
}

func (AnswerEvent) TableName() string { return "answer_events" }
