package extract

import (
	"fmt"
	"strings"
)

// CleanObjectPayload is the single-object counterpart of CleanArrayPayload:
// it strips code fences and surrounding prose from a response expected to be
// one JSON object, cutting at the brace that closes it.
func CleanObjectPayload(text string) (string, error) {
	s := strings.TrimSpace(text)

	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response: %q", head(s, 120))
	}
	s = s[start:]

	depth := 0
	inStr := false
	esc := false
	end := -1
scan:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case esc:
			esc = false
		case inStr:
			if c == '\\' {
				esc = true
			} else if c == '"' {
				inStr = false
			}
		case c == '"':
			inStr = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}
	if end >= 0 {
		s = s[:end+1]
	}

	return trailingComma.ReplaceAllString(s, "$1"), nil
}
