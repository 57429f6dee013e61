package agent

import (
	"encoding/json"
)

// ParseOutcome records which branch a provider's response parsing took: the
// decoded vendor payload, or the deterministic fallback with the reason it
// was substituted.
type ParseOutcome struct {
	FallbackUsed bool
	Reason       string
}

type generatedPayload struct {
	Files       map[string]string `json:"files"`
	Description string            `json:"description"`
	Features    []string          `json:"features"`
}

// parseGeneration locates the first balanced JSON object in free-form vendor
// text and decodes it. It is total: malformed or missing JSON yields the
// fallback payload, never an error.
func parseGeneration(text string) (generatedPayload, ParseOutcome) {
	span := extractJSON(text)
	if span == "" {
		return fallbackPayload(), ParseOutcome{FallbackUsed: true, Reason: "no JSON object in response"}
	}

	var payload generatedPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return fallbackPayload(), ParseOutcome{FallbackUsed: true, Reason: "undecodable JSON: " + err.Error()}
	}
	if len(payload.Files) == 0 {
		return fallbackPayload(), ParseOutcome{FallbackUsed: true, Reason: "decoded payload has no files"}
	}
	if payload.Description == "" {
		payload.Description = "Generated application"
	}
	if len(payload.Features) == 0 {
		payload.Features = []string{"Modern interface", "Responsive design"}
	}
	return payload, ParseOutcome{}
}

// extractJSON returns the first brace-balanced span in text, honoring string
// literals and escapes. Lenient by design; the decoder has the final say.
func extractJSON(text string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
