package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweetlab/internal/classify"
	"tweetlab/internal/config"
	"tweetlab/internal/eval"
	"tweetlab/internal/features"
	"tweetlab/internal/llm"
)

var modelFlag string

// classifyCmd labels the full core sample with the selected model.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every original tweet with the selected model",
	Long: `Classifies the core sample (original tweets and replies to others)
with the selected model using a bounded worker pool. Progress is logged
per tweet to an append-only file, so an interrupted run resumes where it
left off: already-classified tweets are skipped, failed ones retried.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&modelFlag, "model", "", "candidate model name (default: the select-model winner)")
}

func resolveModel() (config.ModelSpec, error) {
	name := modelFlag
	if name == "" {
		selected, err := eval.ReadSelected(cfg.Eval.SelectedPath)
		if err != nil {
			return config.ModelSpec{}, fmt.Errorf("no --model given and no selected model recorded (run select-model first): %w", err)
		}
		name = selected
	}
	for _, spec := range cfg.LLM.Candidates {
		if spec.Name == name {
			return spec, nil
		}
	}
	return config.ModelSpec{}, fmt.Errorf("model %q is not a configured candidate", name)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec, err := resolveModel()
	if err != nil {
		return err
	}

	set, st, err := loadDataset()
	if err != nil {
		return err
	}
	defer st.Close()
	core := features.CoreSample(set)

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	backoff, err := cfg.RetryBackoff()
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, spec, cfg.LLM.Keys, timeout)
	if err != nil {
		return fmt.Errorf("model %s: %w", spec.Name, err)
	}

	progress, replayed, err := classify.OpenProgress(cfg.Classify.ProgressPath)
	if err != nil {
		return err
	}
	defer progress.Close()

	runner := &classify.Runner{
		Client:        client,
		ModelName:     spec.Name,
		Retry:         llm.RetryPolicy{MaxRetries: cfg.LLM.MaxRetries, BaseDelay: backoff},
		Workers:       cfg.Classify.Workers,
		MinTextLength: cfg.Classify.MinTextLength,
		Progress:      progress,
	}
	logger.Info("classification starting",
		zap.String("model", spec.Name),
		zap.Int("workers", cfg.Classify.Workers),
		zap.Int("tweets", len(core.Tweets)))

	summary, err := runner.Run(ctx, core.Tweets, replayed)
	if err != nil {
		return err
	}

	if err := classify.WriteCSV(cfg.Classify.OutputPath, core.Tweets, replayed); err != nil {
		return err
	}
	if err := classify.WriteMetadata(cfg.Classify.MetadataPath, summary, replayed); err != nil {
		return err
	}
	if err := st.ReplaceClassifications(replayed); err != nil {
		return err
	}

	fmt.Printf("Run %s with %s: %d classified, %d failed, %d resumed from previous runs\n",
		summary.RunID, summary.Model, summary.Classified, summary.Failed, summary.Resumed)
	fmt.Printf("Results: %s\nMetadata: %s\n", cfg.Classify.OutputPath, cfg.Classify.MetadataPath)
	return nil
}
