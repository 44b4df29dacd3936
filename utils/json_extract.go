package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a model answer holds no JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

var jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(\\{.*?\\}|\\[.*?\\])\\s*```")

// ExtractJSON decodes the first JSON object or array found in a model answer
// into v. Fenced ```json blocks win over bare braces.
func ExtractJSON(response string, v any) error {
	candidates := make([]string, 0, 2)
	if m := jsonFencePattern.FindStringSubmatch(response); m != nil {
		candidates = append(candidates, m[1])
	}
	if raw, ok := balancedSpan(response); ok {
		candidates = append(candidates, raw)
	}
	if len(candidates) == 0 {
		return ErrNoJSON
	}

	var lastErr error
	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to decode JSON from response: %w", lastErr)
}

// balancedSpan returns the first brace- or bracket-balanced span, skipping
// over string literals.
func balancedSpan(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	open := s[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == closer:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
