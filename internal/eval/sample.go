// Package eval selects the classification model: it scores candidate
// models against a ground-truth model on a held-out sample and persists
// the winner so classification can run independently.
package eval

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"tweetlab/internal/features"
)

// SampleConfig controls held-out sample construction.
type SampleConfig struct {
	Size          int
	MinTextLength int
	Seed          int64

	// ExcludeIDs are tweet ids that appear anywhere in prompt text.
	// The held-out sample must be disjoint from them so evaluation
	// never scores a model on its own exemplars.
	ExcludeIDs map[string]bool
}

// HeldOutSample draws a diverse evaluation sample stratified across
// engagement levels: half from the top quartile and middle half
// combined evenly, the rest from the bottom quartile. Deterministic for
// a fixed seed.
func HeldOutSample(tweets []features.Tweet, cfg SampleConfig) []features.Tweet {
	eligible := make([]features.Tweet, 0, len(tweets))
	for _, t := range tweets {
		if t.ID == "" || cfg.ExcludeIDs[t.ID] {
			continue
		}
		if len(strings.TrimSpace(t.Text)) <= cfg.MinTextLength {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return nil
	}

	sorted := make([]features.Tweet, len(eligible))
	copy(sorted, eligible)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalEngagement > sorted[j].TotalEngagement
	})

	q1 := len(sorted) / 4
	q3 := 3 * len(sorted) / 4
	high := sorted[:q1]
	mid := sorted[q1:q3]
	low := sorted[q3:]

	wantHigh := cfg.Size * 2 / 5
	wantMid := cfg.Size * 2 / 5
	wantLow := cfg.Size - wantHigh - wantMid

	rng := rand.New(rand.NewSource(cfg.Seed))
	sample := make([]features.Tweet, 0, cfg.Size)
	sample = append(sample, draw(rng, high, wantHigh)...)
	sample = append(sample, draw(rng, mid, wantMid)...)
	sample = append(sample, draw(rng, low, wantLow)...)

	// Dedupe by id, keep first occurrence, truncate to size.
	seen := make(map[string]bool, len(sample))
	out := make([]features.Tweet, 0, len(sample))
	for _, t := range sample {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
		if len(out) == cfg.Size {
			break
		}
	}
	return out
}

func draw(rng *rand.Rand, pool []features.Tweet, n int) []features.Tweet {
	if n >= len(pool) {
		return pool
	}
	picked := make([]features.Tweet, 0, n)
	for _, idx := range rng.Perm(len(pool))[:n] {
		picked = append(picked, pool[idx])
	}
	return picked
}

// VerifyDisjoint fails when any sampled tweet id appears in the
// exemplar set.
func VerifyDisjoint(sample []features.Tweet, exemplarIDs map[string]bool) error {
	for _, t := range sample {
		if exemplarIDs[t.ID] {
			return fmt.Errorf("held-out sample overlaps prompt exemplars: tweet %s", t.ID)
		}
	}
	return nil
}
