package engine

import (
	"encoding/json"
	"strings"
)

// Depth-counted extraction of the first complete JSON array or object from a
// model's free-text reply. A naive first-`[`-to-last-`]` scan breaks on
// nested structures and on trailing prose; this scanner tracks nesting depth
// and string state instead.

func extractJSONArray(raw string) (string, error) {
	return extractDelimited(raw, '[', ']')
}

func extractJSONObject(raw string) (string, error) {
	return extractDelimited(raw, '{', '}')
}

func extractDelimited(raw string, open, close byte) (string, error) {
	s := stripCodeFences(raw)
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", ExtractionError{Msg: "response contains no JSON " + delimName(open)}
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return "", ExtractionError{Msg: "extracted JSON " + delimName(open) + " does not parse"}
				}
				return candidate, nil
			}
		}
	}
	return "", ExtractionError{Msg: "truncated JSON " + delimName(open) + " in response"}
}

func stripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func delimName(open byte) string {
	if open == '[' {
		return "array"
	}
	return "object"
}
