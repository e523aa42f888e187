package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseCandidates extracts the JSON candidate array from a provider
// response. Providers routinely wrap output in code fences or surrounding
// prose; only the span from the first '[' to the last ']' is parsed.
func ParseCandidates(raw string) ([]Candidate, error) {
	s := cleanModelJSON(raw)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	s = s[start : end+1]

	var candidates []Candidate
	if err := json.Unmarshal([]byte(s), &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse candidate array: %w", err)
	}

	return candidates, nil
}

// cleanModelJSON strips ```json ... ``` or ``` ... ``` wrappers.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
