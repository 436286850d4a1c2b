package quiz

import "github.com/abhisek/tonesnap/internal/llm"

// QuizSchema is sent to providers with native structured output. Per-type
// option rules cannot be expressed portably, so the validator chain
// enforces them.
var QuizSchema = &llm.Schema{
	Name:        "mandarin-quiz",
	Description: "A three-question Mandarin pronunciation quiz about the main object in a photo",
	Definition:  quizDefinition(true),
}

// responseSchema is what the schema validator checks. It tolerates extra
// keys, since providers without structured output often add them.
var responseSchema = &llm.Schema{
	Name:       "mandarin-quiz-response",
	Definition: quizDefinition(false),
}

func quizDefinition(closed bool) map[string]any {
	option := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":   map[string]any{"type": "string", "description": "Option id: a, b, c or d"},
			"text": map[string]any{"type": "string", "description": "Option text in pinyin letters"},
		},
		"required": []any{"id", "text"},
	}
	question := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": "integer", "minimum": 1},
			"type": map[string]any{
				"type": "string",
				"enum": []any{string(TypeInitial), string(TypeFinal), string(TypeTone)},
			},
			"questionText": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":        "array",
				"items":       option,
				"maxItems":    4,
				"description": "Exactly 4 options for initial and final questions; empty for the tone question",
			},
			"correctOptionId": map[string]any{
				"type":        "string",
				"description": "An option id, or for the tone question one of ˉ ˊ ˇ ˋ ˙",
			},
			"explanation": map[string]any{"type": "string"},
		},
		"required": []any{"id", "type", "questionText", "options", "correctOptionId", "explanation"},
	}
	root := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detectedObject": map[string]any{"type": "string", "description": "Object name in Traditional Chinese"},
			"pinyin":         map[string]any{"type": "string", "description": "Pinyin with tone marks"},
			"englishMeaning": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":     "array",
				"items":    question,
				"minItems": 3,
				"maxItems": 3,
			},
		},
		"required": []any{"detectedObject", "pinyin", "englishMeaning", "questions"},
	}
	if closed {
		option["additionalProperties"] = false
		question["additionalProperties"] = false
		root["additionalProperties"] = false
	}
	return root
}

// toneCheckSchema is the structured output for tone checks.
var toneCheckSchema = &llm.Schema{
	Name:        "tone-check",
	Description: "Whether a drawing matches the expected tone mark",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isMatch": map[string]any{"type": "boolean"},
		},
		"required":             []any{"isMatch"},
		"additionalProperties": false,
	},
}
