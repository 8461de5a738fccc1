package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tweetlab/internal/stats"
)

// statsCmd writes engagement summary tables.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize engagement by account tier and by label",
	Long: `Computes descriptive engagement statistics (count, mean, standard
deviation, winsorized mean, median) grouped by account tier, and, when
classifications exist in the store, by each label dimension.`,
	RunE: runStats,
}

var labelDimensions = []string{
	"humor_type", "topic_category", "has_data_reference",
	"shows_vulnerability", "critique_type",
}

func runStats(cmd *cobra.Command, args []string) error {
	set, st, err := loadDataset()
	if err != nil {
		return err
	}
	defer st.Close()

	tierPath := filepath.Join(cfg.Output.Dir, "engagement_by_tier.csv")
	byTier := stats.ByTier(set.Tweets)
	if err := stats.WriteCSV(tierPath, "account_tier", byTier); err != nil {
		return err
	}
	fmt.Printf("Engagement by tier -> %s\n", tierPath)
	for _, s := range byTier {
		fmt.Printf("  %-20s n=%-5d mean=%.1f median=%.1f\n", s.Group, s.Count, s.MeanEngagement, s.MedianRaw)
	}

	records, err := st.LoadClassifications()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No classifications stored; run classify for label summaries")
		return nil
	}

	for _, dim := range labelDimensions {
		byLabel, err := stats.ByLabel(set.Tweets, records, dim)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Output.Dir, fmt.Sprintf("engagement_by_%s.csv", dim))
		if err := stats.WriteCSV(path, dim, byLabel); err != nil {
			return err
		}
		fmt.Printf("Engagement by %s -> %s\n", dim, path)
	}
	return nil
}
