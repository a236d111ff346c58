package backend

import "encoding/json"

// ExtractText pulls text content out of a wire payload of unknown shape.
//
// OpenAI-compatible providers disagree on where completion text lives.
// The shapes accepted, in order:
//
//   - a bare JSON string
//   - {"content": "..."}
//   - {"choices": [{"message": {"content": "..."}}, ...]}
//   - {"choices": [{"text": "..."}, ...]}
//   - {"text": "..."}, {"output": "..."}, {"completion": "..."}
//   - {"message": {"content": "..."}}
//
// Content arrays of parts ([{"type": "text", "text": "..."}]) are
// concatenated. Returns "" when nothing matches; never panics.
func ExtractText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return extractValue(v)
}

// extractValue walks a decoded payload looking for text content.
func extractValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		// Content split into typed parts; join the text ones.
		var out string
		for _, part := range val {
			m, ok := part.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := m["text"].(string); ok {
				out += s
			}
		}
		return out
	case map[string]any:
		return extractObject(val)
	}
	return ""
}

func extractObject(m map[string]any) string {
	if s := extractChoices(m); s != "" {
		return s
	}

	// Alternate top-level field names, most common first.
	for _, key := range []string{"content", "text", "output", "completion"} {
		if s := extractValue(m[key]); s != "" {
			return s
		}
	}

	// {"message": {"content": ...}} without a choices wrapper.
	if msg, ok := m["message"].(map[string]any); ok {
		return extractValue(msg["content"])
	}

	return ""
}

func extractChoices(m map[string]any) string {
	choices, ok := m["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}

	if msg, ok := first["message"].(map[string]any); ok {
		if s := extractValue(msg["content"]); s != "" {
			return s
		}
	}

	// Legacy completion endpoints put text directly on the choice.
	if s, ok := first["text"].(string); ok {
		return s
	}

	return ""
}
