// Package stats computes descriptive engagement summaries over the
// engineered dataset, grouped by account tier or by classification
// label.
package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"tweetlab/internal/classify"
	"tweetlab/internal/features"
)

// Summary is one group's engagement profile.
type Summary struct {
	Group          string
	Count          int
	MeanEngagement float64
	StdDev         float64
	MeanWinsorized float64
	MedianRaw      float64
}

// Label dimensions ByLabel accepts.
var labelDimensions = []string{
	"humor_type", "topic_category", "has_data_reference",
	"shows_vulnerability", "critique_type",
}

// ByTier summarizes engagement per account tier, tiers sorted by name.
func ByTier(tweets []features.Tweet) []Summary {
	groups := make(map[string][]features.Tweet)
	for _, t := range tweets {
		groups[t.AccountTier] = append(groups[t.AccountTier], t)
	}
	return summarize(groups)
}

// ByLabel summarizes engagement per value of one label dimension,
// considering only tweets with a successful classification.
func ByLabel(tweets []features.Tweet, records map[string]classify.Record, dimension string) ([]Summary, error) {
	valid := false
	for _, d := range labelDimensions {
		if d == dimension {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown label dimension %q (expected one of %v)", dimension, labelDimensions)
	}

	groups := make(map[string][]features.Tweet)
	for _, t := range tweets {
		rec, ok := records[t.ID]
		if !ok || rec.Status != classify.StatusDone || rec.Labels == nil {
			continue
		}
		var value string
		switch dimension {
		case "humor_type":
			value = rec.Labels.HumorType
		case "topic_category":
			value = rec.Labels.TopicCategory
		case "has_data_reference":
			value = strconv.FormatBool(rec.Labels.HasDataReference)
		case "shows_vulnerability":
			value = strconv.FormatBool(rec.Labels.ShowsVulnerability)
		case "critique_type":
			value = rec.Labels.CritiqueType
		}
		groups[value] = append(groups[value], t)
	}
	return summarize(groups), nil
}

func summarize(groups map[string][]features.Tweet) []Summary {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		members := groups[name]
		raw := make([]float64, len(members))
		winsorized := make([]float64, len(members))
		for i, t := range members {
			raw[i] = float64(t.TotalEngagement)
			winsorized[i] = t.WinsorizedEngagement
		}
		mean, std := stat.MeanStdDev(raw, nil)
		if len(raw) < 2 {
			std = 0
		}
		sort.Float64s(raw)
		summaries = append(summaries, Summary{
			Group:          name,
			Count:          len(members),
			MeanEngagement: mean,
			StdDev:         std,
			MeanWinsorized: stat.Mean(winsorized, nil),
			MedianRaw:      stat.Quantile(0.5, stat.LinInterp, raw, nil),
		})
	}
	return summaries
}

// WriteCSV writes summaries with a caller-chosen group column name.
func WriteCSV(path, groupColumn string, summaries []Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{groupColumn, "count", "mean_engagement", "stddev_engagement", "mean_winsorized", "median_engagement"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			s.Group,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.MeanEngagement, 'f', 2, 64),
			strconv.FormatFloat(s.StdDev, 'f', 2, 64),
			strconv.FormatFloat(s.MeanWinsorized, 'f', 2, 64),
			strconv.FormatFloat(s.MedianRaw, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
