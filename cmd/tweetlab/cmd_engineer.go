package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tweetlab/internal/features"
	"tweetlab/internal/store"
)

var archiveFlag string

// engineerCmd parses the archive and persists the engineered dataset.
var engineerCmd = &cobra.Command{
	Use:   "engineer",
	Short: "Parse the archive and build the engineered dataset",
	Long: `Parses the Twitter archive export (JSON array, JSON lines, or the
tweets.js envelope), derives engagement and content features for every
tweet, winsorizes total engagement, reconstructs threads and stores the
result in the dataset database.`,
	RunE: runEngineer,
}

func init() {
	engineerCmd.Flags().StringVar(&archiveFlag, "archive", "", "archive path (overrides config)")
}

func runEngineer(cmd *cobra.Command, args []string) error {
	path := cfg.Archive.Path
	if archiveFlag != "" {
		path = archiveFlag
	}

	set, err := engineerArchive(path)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ReplaceEngineered(set); err != nil {
		return err
	}

	core := features.CoreSample(set)
	fmt.Printf("Engineered %d tweets (%d rows needed coercion)\n", len(set.Tweets), set.CoercedRows)
	fmt.Printf("Core sample: %d original tweets\n", len(core.Tweets))
	fmt.Printf("Winsorization: cap %.1f at percentile %.2f\n", set.WinsorCap, set.Percentile)
	fmt.Printf("Stored in %s\n", st.Path())
	return nil
}
