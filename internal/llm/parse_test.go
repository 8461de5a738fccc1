package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
	"humor_type": "absurdist",
	"topic_category": "tech",
	"has_data_reference": true,
	"shows_vulnerability": false,
	"critique_type": "systemic"
}`

func TestParseLabelsPlainJSON(t *testing.T) {
	labels, err := ParseLabels(validResponse)
	require.NoError(t, err)
	assert.Equal(t, "absurdist", labels.HumorType)
	assert.Equal(t, "tech", labels.TopicCategory)
	assert.True(t, labels.HasDataReference)
	assert.False(t, labels.ShowsVulnerability)
	assert.Equal(t, "systemic", labels.CritiqueType)
}

func TestParseLabelsStripsCodeFence(t *testing.T) {
	labels, err := ParseLabels("```json\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "absurdist", labels.HumorType)

	labels, err = ParseLabels("```\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "tech", labels.TopicCategory)
}

func TestParseLabelsRecoversFromProse(t *testing.T) {
	labels, err := ParseLabels("Here is the classification:\n" + validResponse + "\nHope that helps!")
	require.NoError(t, err)
	assert.Equal(t, "systemic", labels.CritiqueType)
}

func TestParseLabelsCoercesUnknownValues(t *testing.T) {
	labels, err := ParseLabels(`{
		"humor_type": "Slapstick",
		"topic_category": "SPORTS",
		"has_data_reference": false,
		"shows_vulnerability": true,
		"critique_type": "SYSTEMIC"
	}`)
	require.NoError(t, err)
	assert.Equal(t, "none", labels.HumorType, "unknown humor coerces to none")
	assert.Equal(t, "general", labels.TopicCategory, "unknown topic coerces to general")
	assert.Equal(t, "systemic", labels.CritiqueType, "case folds before vocabulary check")
}

func TestParseLabelsNoJSON(t *testing.T) {
	_, err := ParseLabels("I cannot classify this tweet.")
	require.Error(t, err)
}

func TestParseLabelsInvalidJSON(t *testing.T) {
	_, err := ParseLabels(`{"humor_type": }`)
	require.Error(t, err)
}

func TestAgreement(t *testing.T) {
	a := Labels{HumorType: "none", TopicCategory: "tech", HasDataReference: true, ShowsVulnerability: false, CritiqueType: "none"}

	assert.Equal(t, 1.0, Agreement(a, a))

	b := a
	b.TopicCategory = "housing"
	assert.Equal(t, 0.8, Agreement(a, b))

	c := Labels{HumorType: "absurdist", TopicCategory: "housing", HasDataReference: false, ShowsVulnerability: true, CritiqueType: "personal"}
	assert.Equal(t, 0.0, Agreement(a, c))
}

func TestNormalizeReportsCoercion(t *testing.T) {
	l := Labels{HumorType: "observational", TopicCategory: "tech", CritiqueType: "none"}
	assert.False(t, l.Normalize())

	l = Labels{HumorType: "sarcastic", TopicCategory: "tech", CritiqueType: "none"}
	assert.True(t, l.Normalize())
	assert.Equal(t, "none", l.HumorType)
}
