// Package reply provides extraction utilities for parsing LLM responses.
//
// Models often wrap the requested literal in markdown code fences or
// surround it with commentary. This package pulls the literal out of
// such responses so callers only parse the literal itself.
package reply

import (
	"fmt"
	"strings"
)

// ExtractList finds and returns the bracketed list portion of a response
// string. It handles common response patterns:
// 1. A bare list - returned as is
// 2. A list wrapped in markdown code blocks (```python ... ```)
// 3. A list embedded in text - finds first '[' and last ']'
//
// Limitations:
// - Uses simple bracket matching, not full parsing
// - May mismatch if brackets appear in surrounding prose
func ExtractList(response string) (string, error) {
	response = StripCodeFences(response)

	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		preview := response
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		return "", fmt.Errorf("no list literal in response: %q", preview)
	}
	return response[start : end+1], nil
}

// StripCodeFences removes markdown code block markers from a response.
// Handles patterns like ```python\n...\n``` or ```\n...\n```
func StripCodeFences(response string) string {
	trimmed := strings.TrimSpace(response)

	// Handle a language tag after the opening fence
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(trimmed[:nl])
			if firstLine != "" && !strings.ContainsAny(firstLine, "[]'\"") {
				trimmed = trimmed[nl+1:]
			}
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}
