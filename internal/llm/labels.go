// Package llm provides the classification clients: a provider-agnostic
// interface, HTTP clients for OpenAI-compatible chat APIs, a Gemini
// client, the shared retry policy and structured response parsing.
package llm

import "strings"

// Labels is the structured classification payload for one tweet.
type Labels struct {
	HumorType          string `json:"humor_type"`
	TopicCategory      string `json:"topic_category"`
	HasDataReference   bool   `json:"has_data_reference"`
	ShowsVulnerability bool   `json:"shows_vulnerability"`
	CritiqueType       string `json:"critique_type"`
}

// Allowed categorical values.
var (
	HumorTypes      = []string{"absurdist", "self_deprecating", "observational", "none"}
	TopicCategories = []string{"tech", "housing", "religion", "politics", "social_commentary", "personal", "general"}
	CritiqueTypes   = []string{"systemic", "institutional", "personal", "none"}
)

// NumDimensions is the number of label dimensions compared for
// agreement scoring.
const NumDimensions = 5

// Normalize lowercases the categorical fields and coerces values outside
// the allowed sets to their neutral member. Returns true when any field
// needed coercion.
func (l *Labels) Normalize() bool {
	coerced := false
	l.HumorType = strings.ToLower(strings.TrimSpace(l.HumorType))
	if !contains(HumorTypes, l.HumorType) {
		l.HumorType = "none"
		coerced = true
	}
	l.TopicCategory = strings.ToLower(strings.TrimSpace(l.TopicCategory))
	if !contains(TopicCategories, l.TopicCategory) {
		l.TopicCategory = "general"
		coerced = true
	}
	l.CritiqueType = strings.ToLower(strings.TrimSpace(l.CritiqueType))
	if !contains(CritiqueTypes, l.CritiqueType) {
		l.CritiqueType = "none"
		coerced = true
	}
	return coerced
}

// Agreement returns the fraction of dimensions on which two label sets
// match, in [0, 1].
func Agreement(a, b Labels) float64 {
	matches := 0
	if a.HumorType == b.HumorType {
		matches++
	}
	if a.TopicCategory == b.TopicCategory {
		matches++
	}
	if a.HasDataReference == b.HasDataReference {
		matches++
	}
	if a.ShowsVulnerability == b.ShowsVulnerability {
		matches++
	}
	if a.CritiqueType == b.CritiqueType {
		matches++
	}
	return float64(matches) / float64(NumDimensions)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
