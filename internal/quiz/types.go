// Package quiz turns a photo into a three-question Mandarin pronunciation
// quiz: prompt construction, the model call, repair of the model's JSON and
// validation of the result. It also asks the model whether a drawing
// matches a tone mark.
package quiz

// QuestionType is the phonetic part of the first character being asked
// about.
type QuestionType string

const (
	TypeInitial QuestionType = "initial" // 聲母
	TypeFinal   QuestionType = "final"   // 韻母
	TypeTone    QuestionType = "tone"    // 聲調, answered by drawing
)

// The five tone glyphs a tone question may expect.
const (
	ToneFirst   = "ˉ"
	ToneSecond  = "ˊ"
	ToneThird   = "ˇ"
	ToneFourth  = "ˋ"
	ToneNeutral = "˙"
)

// ToneGlyphs lists the tone glyphs in tone order.
var ToneGlyphs = []string{ToneFirst, ToneSecond, ToneThird, ToneFourth, ToneNeutral}

// ToneNumber returns 1-4 for the marked tones, 5 for neutral and 0 for
// anything else.
func ToneNumber(glyph string) int {
	for i, g := range ToneGlyphs {
		if g == glyph {
			return i + 1
		}
	}
	return 0
}

// Option is one choice of a multiple-choice question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one quiz question. Options is empty exactly when Type is
// TypeTone; CorrectOptionID then holds a tone glyph instead of an option id.
type Question struct {
	ID              int          `json:"id"`
	Type            QuestionType `json:"type"`
	QuestionText    string       `json:"questionText"`
	Options         []Option     `json:"options"`
	CorrectOptionID string       `json:"correctOptionId"`
	Explanation     string       `json:"explanation"`
}

// IsTone reports whether the question is answered by drawing.
func (q *Question) IsTone() bool { return q.Type == TypeTone }

// Option returns the option with the given id.
func (q *Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// AnalysisResult is a generated quiz. It is immutable once returned.
type AnalysisResult struct {
	DetectedObject string     `json:"detectedObject"`
	Pinyin         string     `json:"pinyin"`
	EnglishMeaning string     `json:"englishMeaning"`
	Questions      []Question `json:"questions"`
}

// Question returns the question with the given id, or nil.
func (r *AnalysisResult) Question(id int) *Question {
	for i := range r.Questions {
		if r.Questions[i].ID == id {
			return &r.Questions[i]
		}
	}
	return nil
}

// ToneQuestion returns the tone question, or nil.
func (r *AnalysisResult) ToneQuestion() *Question {
	for i := range r.Questions {
		if r.Questions[i].IsTone() {
			return &r.Questions[i]
		}
	}
	return nil
}
