package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Normalizer repairs raw model output and parses it into an AnalysisResult.
// It performs no I/O and holds no state beyond its rule list.
type Normalizer struct {
	Rules []RepairRule
}

// DefaultNormalizer returns a Normalizer with DefaultRules.
func DefaultNormalizer() *Normalizer {
	return &Normalizer{Rules: DefaultRules()}
}

// With returns a copy of n with extra rules appended after the existing ones.
func (n *Normalizer) With(rules ...RepairRule) *Normalizer {
	out := make([]RepairRule, 0, len(n.Rules)+len(rules))
	out = append(out, n.Rules...)
	return &Normalizer{Rules: append(out, rules...)}
}

// Repair runs every rule in order and returns the resulting text.
func (n *Normalizer) Repair(raw string) string {
	text := strings.TrimSpace(raw)
	for _, r := range n.Rules {
		text = r.Apply(text)
	}
	return strings.TrimSpace(text)
}

// Normalize repairs raw and parses it. Parse failures are returned as
// *MalformedResponseError.
func (n *Normalizer) Normalize(raw string) (*AnalysisResult, error) {
	return parse(n.Repair(raw))
}

// Normalize runs the default pipeline.
func Normalize(raw string) (*AnalysisResult, error) {
	return DefaultNormalizer().Normalize(raw)
}

func parse(repaired string) (*AnalysisResult, error) {
	if repaired == "" {
		return nil, &MalformedResponseError{Repaired: repaired, Err: errors.New("empty response")}
	}

	var res AnalysisResult
	if err := decodeSingle(repaired, &res); err != nil {
		return nil, &MalformedResponseError{Repaired: repaired, Err: err}
	}
	return &res, nil
}

// decodeSingle decodes exactly one JSON value from text into v.
func decodeSingle(text string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
