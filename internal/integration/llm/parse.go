package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/concept-interview/internal/entity"
)

// ExtractJSON strips the non-JSON wrapping models tend to add around
// structured replies: markdown code fences, leading prose, trailing notes.
// It returns the innermost JSON document, or the trimmed input when no
// clearer candidate is found.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Fenced block with an explicit json tag
	if idx := strings.Index(content, "```json"); idx != -1 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}

	// Any fenced block
	if idx := strings.Index(content, "```"); idx != -1 {
		rest := content[idx+len("```"):]
		if end := strings.Index(rest, "```"); end != -1 {
			candidate := strings.TrimSpace(rest[:end])
			// Drop a possible language tag on the first line
			if nl := strings.IndexByte(candidate, '\n'); nl != -1 {
				firstLine := strings.TrimSpace(candidate[:nl])
				if firstLine != "" && !strings.ContainsAny(firstLine, "{[") {
					candidate = strings.TrimSpace(candidate[nl+1:])
				}
			}
			return candidate
		}
	}

	// Widest brace span
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start != -1 && end > start {
		return content[start : end+1]
	}

	// Widest bracket span, for bare top-level arrays
	start = strings.IndexByte(content, '[')
	end = strings.LastIndexByte(content, ']')
	if start != -1 && end > start {
		return content[start : end+1]
	}

	return content
}

// DecodeReply extracts the JSON document from a model reply and unmarshals it
// into dst. Any structural failure is entity.ErrMalformedResponse.
func DecodeReply(content string, dst any) error {
	raw := ExtractJSON(content)
	if raw == "" {
		return fmt.Errorf("%w: empty reply", entity.ErrMalformedResponse)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	}

	return nil
}

// ExtractJSONValue returns the string value of a single top-level key from a
// model reply, or the whole trimmed reply when it is not a JSON object.
// Classification replies come back either as {"verdict":"VALID"} or as the
// bare word, depending on the model.
func ExtractJSONValue(content, key string) string {
	raw := ExtractJSON(content)

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if v, ok := obj[key].(string); ok {
			return v
		}
	}

	return strings.Trim(strings.TrimSpace(content), "\"`.")
}
