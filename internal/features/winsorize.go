package features

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WinsorCap computes the engagement value at the given percentile over
// all tweets, using linear interpolation between order statistics (the
// same estimator the original analysis used). The cap is a property of
// the whole set: recomputing on a different subset yields a different
// cap, which is why filtered samples inherit this value instead.
func WinsorCap(tweets []Tweet, percentile float64) float64 {
	if len(tweets) == 0 {
		return 0
	}
	values := make([]float64, len(tweets))
	for i, t := range tweets {
		values[i] = float64(t.TotalEngagement)
	}
	sort.Float64s(values)
	return stat.Quantile(percentile, stat.LinInterp, values, nil)
}

// ApplyWinsorCap clips every tweet's engagement at cap, in place.
// Clipping is idempotent: re-clipping at the same cap changes nothing.
func ApplyWinsorCap(tweets []Tweet, cap float64) {
	for i := range tweets {
		v := float64(tweets[i].TotalEngagement)
		if v > cap {
			v = cap
		}
		tweets[i].WinsorizedEngagement = v
	}
}
