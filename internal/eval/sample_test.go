package eval

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetlab/internal/features"
)

func engagementPool(n int) []features.Tweet {
	// Engagement descends with index so the strata are easy to reason
	// about: the first quarter is "high", the last quarter "low".
	out := make([]features.Tweet, n)
	for i := range out {
		out[i] = features.Tweet{
			ID:              fmt.Sprintf("id-%03d", i),
			Text:            fmt.Sprintf("tweet number %03d with plenty of text in it", i),
			TotalEngagement: n - i,
		}
	}
	return out
}

func TestHeldOutSampleSizeAndDeterminism(t *testing.T) {
	pool := engagementPool(100)
	cfg := SampleConfig{Size: 20, MinTextLength: 20, Seed: 42}

	first := HeldOutSample(pool, cfg)
	require.Len(t, first, 20)

	second := HeldOutSample(pool, cfg)
	require.Empty(t, cmp.Diff(first, second), "same seed draws the same sample")

	other := HeldOutSample(pool, SampleConfig{Size: 20, MinTextLength: 20, Seed: 7})
	assert.NotEqual(t, first, other, "a different seed draws differently")
}

func TestHeldOutSampleStratification(t *testing.T) {
	pool := engagementPool(100)
	sample := HeldOutSample(pool, SampleConfig{Size: 20, MinTextLength: 20, Seed: 42})

	high, mid, low := 0, 0, 0
	for _, tw := range sample {
		switch {
		case tw.TotalEngagement > 75:
			high++
		case tw.TotalEngagement > 25:
			mid++
		default:
			low++
		}
	}
	assert.Equal(t, 8, high, "two fifths from the top quartile")
	assert.Equal(t, 8, mid, "two fifths from the middle half")
	assert.Equal(t, 4, low, "one fifth from the bottom quartile")
}

func TestHeldOutSampleMinTextLength(t *testing.T) {
	pool := []features.Tweet{
		{ID: "long", Text: strings.Repeat("x", 40), TotalEngagement: 5},
		{ID: "short", Text: "brief", TotalEngagement: 50},
		{ID: "padded", Text: "   " + strings.Repeat(" ", 40), TotalEngagement: 10},
	}
	sample := HeldOutSample(pool, SampleConfig{Size: 3, MinTextLength: 20, Seed: 1})
	require.Len(t, sample, 1)
	assert.Equal(t, "long", sample[0].ID)
}

func TestHeldOutSampleExcludesIDs(t *testing.T) {
	pool := engagementPool(40)
	exclude := map[string]bool{"id-000": true, "id-001": true}
	sample := HeldOutSample(pool, SampleConfig{Size: 10, MinTextLength: 10, Seed: 42, ExcludeIDs: exclude})
	for _, tw := range sample {
		assert.False(t, exclude[tw.ID])
	}
	require.NoError(t, VerifyDisjoint(sample, exclude))
}

func TestVerifyDisjointDetectsOverlap(t *testing.T) {
	sample := []features.Tweet{{ID: "shared"}}
	require.Error(t, VerifyDisjoint(sample, map[string]bool{"shared": true}))
}

func TestHeldOutSampleSmallPool(t *testing.T) {
	pool := engagementPool(5)
	sample := HeldOutSample(pool, SampleConfig{Size: 20, MinTextLength: 10, Seed: 42})
	assert.LessOrEqual(t, len(sample), 5)
	assert.NotEmpty(t, sample)

	assert.Nil(t, HeldOutSample(nil, SampleConfig{Size: 5, Seed: 1}))
}
