package quiz

import "fmt"

const quizPrompt = `Identify the main object in this image and create a Mandarin quiz. You MUST respond with ONLY valid JSON, no other text.

Tasks:
1. Identify the object (Traditional Chinese).
2. Provide Pinyin with tone marks.
3. Provide English translation.
4. Create exactly 3 questions in this order:

   - **Q1 (initial)**: Ask for the Initial (聲母) of the first character.
     - Options: Correct answer + 3 distinct distractors.

   - **Q2 (final)**: Ask for the Final (韻母) of the first character.
     - Options: Correct answer + 3 distinct distractors.

   - **Q3 (tone)**: Ask for the Tone (聲調) of the first character.
     - questionText: "請畫出『[character]』字的聲調符號" (replace [character] with actual character)
     - options: MUST be an empty array []
     - correctOptionId: Must be the tone symbol ONLY: "ˉ", "ˊ", "ˇ", "ˋ" or "˙" (neutral).

Ensure no duplicate distractors in Q1/Q2.

Response format (JSON only):
{
  "detectedObject": "蘋果",
  "pinyin": "píng guǒ",
  "englishMeaning": "apple",
  "questions": [
    {
      "id": 1,
      "type": "initial",
      "questionText": "『蘋』字的聲母是？",
      "options": [
        {"id": "a", "text": "p"},
        {"id": "b", "text": "b"},
        {"id": "c", "text": "m"},
        {"id": "d", "text": "f"}
      ],
      "correctOptionId": "a",
      "explanation": "『蘋』的聲母是 p"
    },
    {
      "id": 2,
      "type": "final",
      "questionText": "『蘋』字的韻母是？",
      "options": [
        {"id": "a", "text": "ing"},
        {"id": "b", "text": "eng"},
        {"id": "c", "text": "ang"},
        {"id": "d", "text": "ong"}
      ],
      "correctOptionId": "a",
      "explanation": "『蘋』的韻母是 ing"
    },
    {
      "id": 3,
      "type": "tone",
      "questionText": "請畫出『蘋』字的聲調符號",
      "options": [],
      "correctOptionId": "ˊ",
      "explanation": "『蘋』是第二聲，聲調符號是 ˊ"
    }
  ]
}`

func tonePrompt(expected string) string {
	return fmt.Sprintf(`Look at this drawing. Does it represent the Mandarin tone symbol "%s"?
It might be hand-drawn and messy.

You MUST respond with ONLY valid JSON: { "isMatch": true } or { "isMatch": false }`, expected)
}
