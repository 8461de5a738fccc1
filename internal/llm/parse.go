package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseLabels decodes a model response into Labels. Markdown code fences
// are stripped first since models wrap JSON in them despite
// instructions. Out-of-vocabulary categorical values are coerced to the
// neutral member rather than rejected.
func ParseLabels(raw string) (*Labels, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	// Some models prepend prose. Recover by slicing to the outermost
	// object.
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in response: %q", truncate(raw, 200))
		}
		cleaned = cleaned[start : end+1]
	}

	var labels Labels
	if err := json.Unmarshal([]byte(cleaned), &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w (response: %s)", err, truncate(raw, 200))
	}
	labels.Normalize()
	return &labels, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
