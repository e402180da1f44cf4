package aiproxy

import (
	"strings"
	"unicode"

	"github.com/wenhao1996/jikelens/internal/reply"
)

// parseTagList parses a literal list-of-strings expression such as
// ['tag1', 'tag2'] or ["a", "b"]. Text around the brackets (code fences,
// prose) is tolerated; anything structurally wrong inside them is not.
// Returns ok=false when the reply is not a list literal.
func parseTagList(text string) ([]string, bool) {
	list, err := reply.ExtractList(text)
	if err != nil {
		return nil, false
	}
	inner := list[1 : len(list)-1]

	if strings.TrimSpace(inner) == "" {
		return []string{}, true
	}

	var tags []string
	runes := []rune(inner)
	i := 0
	for {
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= len(runes) {
			return nil, false
		}
		quote := runes[i]
		if quote != '\'' && quote != '"' {
			return nil, false
		}
		i++
		var sb strings.Builder
		closed := false
		for i < len(runes) {
			r := runes[i]
			if r == '\\' && i+1 < len(runes) {
				sb.WriteRune(runes[i+1])
				i += 2
				continue
			}
			if r == quote {
				closed = true
				i++
				break
			}
			sb.WriteRune(r)
			i++
		}
		if !closed {
			return nil, false
		}
		tags = append(tags, sb.String())

		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= len(runes) {
			return tags, true
		}
		if runes[i] != ',' {
			return nil, false
		}
		i++
		// trailing comma before the closing bracket
		rest := strings.TrimSpace(string(runes[i:]))
		if rest == "" {
			return tags, true
		}
	}
}

// parseBoolFlag compares the stripped, lower-cased reply to the literal
// "true". Anything else, including "false" and garbage, yields false:
// these flags have no distinct "unknown" outcome.
func parseBoolFlag(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == "true"
}
