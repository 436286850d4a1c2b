// Package speech reads Mandarin words aloud through the platform's speech
// synthesiser. Voices are discovered once at startup; consumers read
// snapshots of the catalog.
package speech

import (
	"strings"
)

// Voice is one installed synthesiser voice.
type Voice struct {
	ID      string // backend-specific identifier passed back to Speak
	Name    string
	Lang    string // BCP 47 style where the backend allows, e.g. zh-CN
	Default bool
	Backend string
}

// FallbackLang is used when no Mandarin voice is installed.
const FallbackLang = "zh-CN"

var cantoneseMarkers = struct{ lang, name []string }{
	lang: []string{"hk", "yue", "cantonese"},
	name: []string{"hong kong", "cantonese", "sin-ji", "sinji"},
}

// isMandarin keeps Chinese voices that are not Cantonese. Sin-Ji is listed
// as zh-TW on some systems but sounds Cantonese.
func isMandarin(v Voice) bool {
	lang := strings.ToLower(v.Lang)
	name := strings.ToLower(v.Name)
	for _, m := range cantoneseMarkers.lang {
		if strings.Contains(lang, m) {
			return false
		}
	}
	for _, m := range cantoneseMarkers.name {
		if strings.Contains(name, m) {
			return false
		}
	}
	return strings.Contains(lang, "zh")
}

func langIs(v Voice, region string) bool {
	l := strings.ReplaceAll(v.Lang, "_", "-")
	return l == region || strings.HasPrefix(l, region)
}

// Mandarin filters voices down to Mandarin ones, keeping order.
func Mandarin(voices []Voice) []Voice {
	var out []Voice
	for _, v := range voices {
		if isMandarin(v) {
			out = append(out, v)
		}
	}
	return out
}

// Select picks the voice to speak with. An installed voice matching
// preferredID always wins. Otherwise, among Mandarin voices: Ting-Ting
// (zh-CN), any zh-CN, any voice named Mandarin, Putonghua or Chinese with a
// CN locale, any zh-TW, then any remaining one. ok is false when nothing
// fits; callers then speak with FallbackLang.
func Select(voices []Voice, preferredID string) (Voice, bool) {
	if preferredID != "" {
		for _, v := range voices {
			if v.ID == preferredID {
				return v, true
			}
		}
	}

	candidates := Mandarin(voices)
	rules := []func(Voice) bool{
		func(v Voice) bool {
			n := strings.ToLower(v.Name)
			return (strings.Contains(n, "ting-ting") || strings.Contains(n, "tingting")) && langIs(v, "zh-CN")
		},
		func(v Voice) bool { return langIs(v, "zh-CN") },
		func(v Voice) bool {
			n := strings.ToLower(v.Name)
			return strings.Contains(n, "mandarin") || strings.Contains(n, "putonghua") ||
				(strings.Contains(n, "chinese") && strings.Contains(v.Lang, "CN"))
		},
		func(v Voice) bool { return langIs(v, "zh-TW") },
	}
	for _, match := range rules {
		for _, v := range candidates {
			if match(v) {
				return v, true
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return Voice{}, false
}
