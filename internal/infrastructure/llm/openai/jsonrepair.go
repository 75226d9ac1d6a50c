package openai

import (
	"encoding/json"
	"strings"

	"github.com/skillgap/analyzer/internal/core/domain"
)

// parsePayload turns raw model output into a JSON object. It tolerates
// markdown fences, surrounding prose, and the string defects models
// commonly produce (literal newlines and stray quotes inside strings).
func parsePayload(content string) (map[string]any, error) {
	content = stripFences(content)

	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err == nil {
		return payload, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, domain.Failf(domain.ErrTruncatedJSON, "model response contains no complete JSON object")
	}

	repaired := repairJSON(content[start : end+1])
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidJSON, "parse model response", err)
	}
	return payload, nil
}

func stripFences(content string) string {
	if idx := strings.Index(content, "```json"); idx != -1 {
		return fencedBody(content, idx+len("```json"))
	}
	if idx := strings.Index(content, "```"); idx != -1 {
		return fencedBody(content, idx+len("```"))
	}
	return strings.TrimSpace(content)
}

func fencedBody(content string, start int) string {
	body := content[start:]
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// repairJSON escapes literal newlines and stray double quotes inside
// string values. A quote inside a string only closes it when the next
// non-whitespace character is one that valid JSON allows after a
// closing quote.
func repairJSON(raw string) string {
	var out strings.Builder
	out.Grow(len(raw) + 16)

	inString := false
	escapePending := false

	for i := 0; i < len(raw); i++ {
		ch := raw[i]

		if escapePending {
			out.WriteByte(ch)
			escapePending = false
			continue
		}

		switch {
		case ch == '\\':
			out.WriteByte(ch)
			escapePending = true
		case ch == '"':
			if !inString {
				inString = true
				out.WriteByte(ch)
				continue
			}
			switch nextNonSpace(raw, i+1) {
			case ':', ',', '}', ']', 0:
				inString = false
				out.WriteByte(ch)
			default:
				out.WriteString(`\"`)
			}
		case inString && ch == '\n':
			out.WriteString(`\n`)
		case inString && ch == '\r':
			out.WriteString(`\r`)
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}

func nextNonSpace(s string, start int) byte {
	for i := start; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return s[i]
		}
	}
	return 0
}
