package quiz

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Combining marks left on vowels after canonical decomposition.
var toneMarks = map[rune]int{
	'\u0304': 1, // macron
	'\u0301': 2, // acute
	'\u030c': 3, // caron
	'\u0300': 4, // grave
}

// FirstSyllableTone returns the tone (1-5) of the first syllable of a pinyin
// string, and false when it cannot be determined. Both diacritic form
// ("píng guǒ") and numbered form ("ping2 guo3") are understood. A syllable
// written without a mark or number is reported as unknown, since models
// often drop marks entirely.
func FirstSyllableTone(pinyin string) (int, bool) {
	fields := strings.FieldsFunc(pinyin, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '\''
	})
	if len(fields) == 0 {
		return 0, false
	}
	first := norm.NFD.String(fields[0])

	// Numbered syllables: the digit ends the syllable.
	for i, r := range first {
		if r >= '1' && r <= '5' {
			return int(r - '0'), i > 0
		}
	}

	// Joined words ("píngguǒ") carry several marks; the first belongs to
	// the first syllable.
	for _, r := range first {
		if tone, ok := toneMarks[r]; ok {
			return tone, true
		}
	}
	return 0, false
}
