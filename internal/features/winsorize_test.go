package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tweetsWithEngagement(values ...int) []Tweet {
	out := make([]Tweet, len(values))
	for i, v := range values {
		out[i] = Tweet{TotalEngagement: v}
	}
	return out
}

func TestWinsorCapClipsOutliers(t *testing.T) {
	tweets := tweetsWithEngagement(1, 1, 1, 2, 2, 3, 5, 8, 20, 100)
	cap := WinsorCap(tweets, 0.95)
	require.Greater(t, cap, 0.0)
	assert.Less(t, cap, 100.0, "the top outlier must be clipped")
	assert.GreaterOrEqual(t, cap, 20.0, "the cap sits between the top two values")

	ApplyWinsorCap(tweets, cap)
	for _, tw := range tweets {
		assert.LessOrEqual(t, tw.WinsorizedEngagement, cap)
	}
	assert.Equal(t, cap, tweets[9].WinsorizedEngagement)
	// Values under the cap pass through unchanged.
	assert.Equal(t, 1.0, tweets[0].WinsorizedEngagement)
	assert.Equal(t, 8.0, tweets[7].WinsorizedEngagement)
}

func TestApplyWinsorCapIdempotent(t *testing.T) {
	tweets := tweetsWithEngagement(3, 7, 50)
	cap := WinsorCap(tweets, 0.95)
	ApplyWinsorCap(tweets, cap)
	first := make([]float64, len(tweets))
	for i, tw := range tweets {
		first[i] = tw.WinsorizedEngagement
	}
	ApplyWinsorCap(tweets, cap)
	for i, tw := range tweets {
		assert.Equal(t, first[i], tw.WinsorizedEngagement)
	}
}

func TestWinsorCapFullPercentileKeepsMax(t *testing.T) {
	tweets := tweetsWithEngagement(1, 5, 9)
	cap := WinsorCap(tweets, 1.0)
	assert.Equal(t, 9.0, cap)
}

func TestWinsorCapEmptySet(t *testing.T) {
	assert.Equal(t, 0.0, WinsorCap(nil, 0.95))
}
