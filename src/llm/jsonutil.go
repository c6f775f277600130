package llm

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// extractJSON returns the first balanced JSON object in text, dropping markdown fences
// and any prose around it. Text without an object is returned trimmed.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escape {
			escape = false
			continue
		}
		if c == '\\' {
			escape = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text
}

// decodeReply unmarshals the JSON object embedded in an LLM reply
func decodeReply(reply string, v any) error {
	if err := sonic.UnmarshalString(extractJSON(reply), v); err != nil {
		return fmt.Errorf("failed to parse model JSON reply: %w", err)
	}
	return nil
}
