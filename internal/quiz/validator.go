package quiz

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/tonesnap/internal/llm"
)

// Validator checks a parsed quiz. Implementations are stateless and safe
// for concurrent use.
type Validator interface {
	// Name is a short identifier used in errors and logs.
	Name() string

	// Validate returns nil when the quiz passes. raw is the repaired JSON
	// the quiz was parsed from.
	Validate(res *AnalysisResult, raw json.RawMessage) *ValidationError
}

// DefaultValidators returns the validator chain in the order it runs.
func DefaultValidators() []Validator {
	return []Validator{
		&SchemaValidator{},
		&StructuralValidator{},
		&OptionsValidator{},
		&ToneMarkValidator{},
		&PinyinToneValidator{},
	}
}

// SchemaValidator checks the raw JSON against the quiz JSON Schema.
type SchemaValidator struct{}

func (v *SchemaValidator) Name() string { return "schema" }

func (v *SchemaValidator) Validate(_ *AnalysisResult, raw json.RawMessage) *ValidationError {
	if err := llm.Validate(responseSchema, raw); err != nil {
		return &ValidationError{Validator: v.Name(), Message: err.Error()}
	}
	return nil
}

// StructuralValidator checks question order and required text.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

var questionOrder = []QuestionType{TypeInitial, TypeFinal, TypeTone}

func (v *StructuralValidator) Validate(res *AnalysisResult, _ json.RawMessage) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(res.DetectedObject) == "" {
		return fail("detectedObject is empty")
	}
	if strings.TrimSpace(res.Pinyin) == "" {
		return fail("pinyin is empty")
	}
	if len(res.Questions) != len(questionOrder) {
		return fail("expected %d questions, got %d", len(questionOrder), len(res.Questions))
	}

	tones := 0
	for i, q := range res.Questions {
		if q.ID != i+1 {
			return fail("question %d has id %d", i+1, q.ID)
		}
		if q.Type != questionOrder[i] {
			return fail("question %d is %q, want %q", q.ID, q.Type, questionOrder[i])
		}
		if strings.TrimSpace(q.QuestionText) == "" {
			return fail("question %d has empty questionText", q.ID)
		}
		if strings.TrimSpace(q.CorrectOptionID) == "" {
			return fail("question %d has empty correctOptionId", q.ID)
		}
		if q.IsTone() {
			tones++
		}
	}
	if tones != 1 {
		return fail("expected exactly one tone question, got %d", tones)
	}
	return nil
}

// OptionsValidator checks the multiple-choice questions: four options with
// distinct ids and texts, and the correct id present exactly once.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

const optionsPerQuestion = 4

func (v *OptionsValidator) Validate(res *AnalysisResult, _ json.RawMessage) *ValidationError {
	for _, q := range res.Questions {
		if q.IsTone() {
			continue
		}
		if len(q.Options) != optionsPerQuestion {
			return v.fail("question %d has %d options, want %d", q.ID, len(q.Options), optionsPerQuestion)
		}

		ids := make(map[string]bool, len(q.Options))
		texts := make(map[string]bool, len(q.Options))
		matches := 0
		for _, o := range q.Options {
			id := strings.TrimSpace(o.ID)
			text := strings.ToLower(strings.TrimSpace(o.Text))
			if id == "" || text == "" {
				return v.fail("question %d has an option with empty id or text", q.ID)
			}
			if ids[id] {
				return v.fail("question %d repeats option id %q", q.ID, id)
			}
			if texts[text] {
				return v.fail("question %d repeats option text %q", q.ID, o.Text)
			}
			ids[id], texts[text] = true, true
			if id == q.CorrectOptionID {
				matches++
			}
		}
		if matches != 1 {
			return v.fail("question %d: correctOptionId %q is not among its options", q.ID, q.CorrectOptionID)
		}
	}
	return nil
}

func (v *OptionsValidator) fail(format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
}

// ToneMarkValidator checks that the tone question expects one of the five
// glyphs and offers no options.
type ToneMarkValidator struct{}

func (v *ToneMarkValidator) Name() string { return "tone-mark" }

func (v *ToneMarkValidator) Validate(res *AnalysisResult, _ json.RawMessage) *ValidationError {
	q := res.ToneQuestion()
	if q == nil {
		return &ValidationError{Validator: v.Name(), Message: "no tone question"}
	}
	if len(q.Options) != 0 {
		return &ValidationError{Validator: v.Name(), Message: "tone question must have no options"}
	}
	if !slices.Contains(ToneGlyphs, q.CorrectOptionID) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("tone answer %q is not one of %s", q.CorrectOptionID, strings.Join(ToneGlyphs, " ")),
		}
	}
	return nil
}

// PinyinToneValidator checks that the expected glyph agrees with the tone
// written on the first pinyin syllable. Unmarked pinyin passes.
type PinyinToneValidator struct{}

func (v *PinyinToneValidator) Name() string { return "pinyin-tone" }

func (v *PinyinToneValidator) Validate(res *AnalysisResult, _ json.RawMessage) *ValidationError {
	q := res.ToneQuestion()
	if q == nil {
		return nil
	}
	tone, ok := FirstSyllableTone(res.Pinyin)
	if !ok {
		return nil
	}
	if want := ToneNumber(q.CorrectOptionID); want != tone {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("pinyin %q starts with tone %d but the tone answer is %q", res.Pinyin, tone, q.CorrectOptionID),
		}
	}
	return nil
}
