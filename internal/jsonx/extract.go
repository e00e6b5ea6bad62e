// Package jsonx extracts structured JSON from conversational model output.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject returns the first balanced {...} span in text. Model replies
// are allowed to wrap the object in prose before and after; anything outside
// the span is ignored. A missing opening brace or an unterminated object is
// an error.
func ExtractObject(text string) ([]byte, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
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
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(text[start : i+1]), nil
			}
		}
	}

	return nil, fmt.Errorf("unterminated JSON object in response")
}

// DecodeObject extracts the first balanced object span and unmarshals it
// into v.
func DecodeObject(text string, v any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
