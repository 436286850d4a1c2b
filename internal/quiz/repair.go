package quiz

import (
	"regexp"
	"strings"
)

// RepairRule rewrites one known malformation in model output. Rules must be
// pure and leave text without that malformation unchanged.
type RepairRule interface {
	Name() string
	Apply(text string) string
}

// DefaultRules returns the repair rules in the order they run.
func DefaultRules() []RepairRule {
	return []RepairRule{
		StripCodeFence{},
		ExtractObject{},
		CollapsedOption{},
		TrailingComma{},
	}
}

// StripCodeFence keeps only the body of the first fenced block, tagged
// json or untagged. Prose around the fence is dropped.
type StripCodeFence struct{}

var fencePattern = regexp.MustCompile("(?s)```[ \t]*(?:json|JSON)?[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```")

func (StripCodeFence) Name() string { return "strip-code-fence" }

func (StripCodeFence) Apply(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	// Unterminated fence, usually a truncated reply.
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			return strings.TrimSpace(trimmed[i+1:])
		}
		return ""
	}
	return text
}

// ExtractObject trims anything outside the outermost {...} span.
type ExtractObject struct{}

func (ExtractObject) Name() string { return "extract-object" }

func (ExtractObject) Apply(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

// CollapsedOption rewrites {"id": "d": "ui"}, where the model dropped the
// "text" key, into {"id": "d", "text": "ui"}.
type CollapsedOption struct{}

var collapsedOptionPattern = regexp.MustCompile(`\{\s*"id"\s*:\s*"([a-zA-Z0-9])"\s*:\s*"([^"]*)"\s*\}`)

func (CollapsedOption) Name() string { return "collapsed-option" }

func (CollapsedOption) Apply(text string) string {
	return collapsedOptionPattern.ReplaceAllString(text, `{"id": "$1", "text": "$2"}`)
}

// TrailingComma removes a comma that directly precedes } or ], ignoring
// commas inside string literals.
type TrailingComma struct{}

func (TrailingComma) Name() string { return "trailing-comma" }

func (TrailingComma) Apply(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' && closesNext(text[i+1:]) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func closesNext(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest != "" && (rest[0] == '}' || rest[0] == ']')
}
