package classify

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"tweetlab/internal/features"
)

// WriteCSV merges engineered tweets with their classification records
// into one flat CSV, rows in the input tweet order. Tweets with no
// terminal record are omitted.
func WriteCSV(path string, tweets []features.Tweet, records map[string]Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create classifications file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"tweet_id", "text", "post_datetime", "account_tier", "reply_type",
		"total_engagement", "winsorized_engagement",
		"humor_type", "topic_category", "has_data_reference",
		"shows_vulnerability", "critique_type",
		"model", "status", "error",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range tweets {
		rec, ok := records[t.ID]
		if !ok {
			continue
		}
		row := []string{
			t.ID,
			t.Text,
			t.PostDatetime.Format("2006-01-02 15:04:05"),
			t.AccountTier,
			t.ReplyType,
			strconv.Itoa(t.TotalEngagement),
			strconv.FormatFloat(t.WinsorizedEngagement, 'f', 2, 64),
		}
		if rec.Labels != nil {
			row = append(row,
				rec.Labels.HumorType,
				rec.Labels.TopicCategory,
				strconv.FormatBool(rec.Labels.HasDataReference),
				strconv.FormatBool(rec.Labels.ShowsVulnerability),
				rec.Labels.CritiqueType,
			)
		} else {
			row = append(row, "", "", "", "", "")
		}
		row = append(row, rec.Model, rec.Status, rec.Error)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// runMetadata is the sidecar written next to the classification CSV.
type runMetadata struct {
	Summary
	LabelCounts map[string]map[string]int `json:"label_counts"`
}

// WriteMetadata writes the run summary plus per-dimension label counts
// as indented JSON.
func WriteMetadata(path string, summary *Summary, records map[string]Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	meta := runMetadata{
		Summary:     *summary,
		LabelCounts: countLabels(records),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run metadata: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write run metadata: %w", err)
	}
	return nil
}

func countLabels(records map[string]Record) map[string]map[string]int {
	counts := map[string]map[string]int{
		"humor_type":          {},
		"topic_category":      {},
		"has_data_reference":  {},
		"shows_vulnerability": {},
		"critique_type":       {},
	}
	for _, rec := range records {
		if rec.Status != StatusDone || rec.Labels == nil {
			continue
		}
		counts["humor_type"][rec.Labels.HumorType]++
		counts["topic_category"][rec.Labels.TopicCategory]++
		counts["has_data_reference"][strconv.FormatBool(rec.Labels.HasDataReference)]++
		counts["shows_vulnerability"][strconv.FormatBool(rec.Labels.ShowsVulnerability)]++
		counts["critique_type"][rec.Labels.CritiqueType]++
	}
	return counts
}

// SortedRecordIDs returns record keys in ascending order, for stable
// iteration in reports and tests.
func SortedRecordIDs(records map[string]Record) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
