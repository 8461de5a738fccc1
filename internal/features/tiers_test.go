package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTiersValidation(t *testing.T) {
	_, err := ParseTiers(nil)
	assert.Error(t, err, "empty tiers")

	_, err = ParseTiers([][2]string{{"first", "2020-01-01"}})
	assert.Error(t, err, "first tier must be open-ended")

	_, err = ParseTiers([][2]string{{"", ""}})
	assert.Error(t, err, "unnamed tier")

	_, err = ParseTiers([][2]string{{"a", ""}, {"b", "2024-01-01"}, {"c", "2023-01-01"}})
	assert.Error(t, err, "starts must increase")

	_, err = ParseTiers([][2]string{{"a", ""}, {"b", "not-a-date"}})
	assert.Error(t, err, "bad date")
}

func TestAssignTierIsTotalAndLowerInclusive(t *testing.T) {
	tiers, err := ParseTiers([][2]string{
		{"early", ""},
		{"mid", "2023-09-12"},
		{"late", "2024-09-12"},
	})
	require.NoError(t, err)

	day := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return ts
	}

	assert.Equal(t, "early", AssignTier(time.Time{}, tiers), "zero time maps to first tier")
	assert.Equal(t, "early", AssignTier(day("2023-09-11"), tiers))
	assert.Equal(t, "mid", AssignTier(day("2023-09-12"), tiers), "boundary day belongs to the new tier")
	assert.Equal(t, "mid", AssignTier(day("2024-09-11"), tiers))
	assert.Equal(t, "late", AssignTier(day("2024-09-12"), tiers))
	assert.Equal(t, "late", AssignTier(day("2030-01-01"), tiers))
}

func TestSingleTierCoversEverything(t *testing.T) {
	tiers, err := ParseTiers([][2]string{{"only", ""}})
	require.NoError(t, err)
	assert.Equal(t, "only", AssignTier(time.Now(), tiers))
}
