// Package extract recovers structured records from the free text a
// generative collaborator returns. Extraction is parse-only: no part of the
// input is ever evaluated.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

const fence = "```"

// Error reports that no strategy recovered a structured record. Raw carries
// the original text for diagnostics.
type Error struct {
	Raw string
}

func (e *Error) Error() string {
	return "no structured record found in response"
}

// Record extracts a key-value record from raw text. Strategies, in order of
// preference, first success wins:
//
//  1. the entire text is a JSON object;
//  2. the text contains exactly one fenced code block whose body is a JSON
//     object;
//  3. the substring between the outermost matching braces is a JSON object.
func Record(raw string) (map[string]any, error) {
	for _, candidate := range candidates(raw) {
		if rec, ok := decodeObject(candidate); ok {
			return rec, nil
		}
	}
	return nil, &Error{Raw: raw}
}

// ToText is the canonical serialization of a record. Record(ToText(r))
// round-trips for any record the engine itself produced.
func ToText(record map[string]any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func candidates(raw string) []string {
	out := []string{strings.TrimSpace(raw)}
	if body, ok := singleFencedBlock(raw); ok {
		out = append(out, body)
	}
	if open := strings.IndexByte(raw, '{'); open >= 0 {
		if close := strings.LastIndexByte(raw, '}'); close > open {
			out = append(out, raw[open:close+1])
		}
	}
	return out
}

// singleFencedBlock returns the body of the fenced code block if the text
// contains exactly one. An optional language tag on the opening fence line is
// stripped.
func singleFencedBlock(raw string) (string, bool) {
	parts := strings.Split(raw, fence)
	if len(parts) != 3 {
		return "", false
	}
	body := parts[1]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// Anything before the first newline is the language tag.
		body = body[nl+1:]
	}
	return strings.TrimSpace(body), true
}

// decodeObject parses s as a JSON object. gjson does both the strict
// validity check and the decode; Value converts nested objects, arrays, and
// numbers the same way a standard decode would (float64 numbers included).
// Non-object documents (arrays, scalars) are rejected.
func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '{' || !gjson.Valid(s) {
		return nil, false
	}
	rec, ok := gjson.Parse(s).Value().(map[string]any)
	return rec, ok
}
