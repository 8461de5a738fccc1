package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweetlab/internal/eval"
	"tweetlab/internal/features"
	"tweetlab/internal/llm"
)

// selectModelCmd evaluates candidate models on a held-out sample.
var selectModelCmd = &cobra.Command{
	Use:   "select-model",
	Short: "Score candidate models against the ground truth and pick one",
	Long: `Draws a held-out sample of original tweets stratified across
engagement levels, classifies each with the ground-truth model and every
candidate, scores candidates by label agreement and records the winner.

The winner is written to the selected-model file so a later classify run
needs no flags.`,
	RunE: runSelectModel,
}

func runSelectModel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	set, st, err := loadDataset()
	if err != nil {
		return err
	}
	defer st.Close()

	core := features.CoreSample(set)
	sample := eval.HeldOutSample(core.Tweets, eval.SampleConfig{
		Size:          cfg.Eval.SampleSize,
		MinTextLength: cfg.Eval.MinTextLength,
		Seed:          cfg.Eval.Seed,
	})
	if len(sample) == 0 {
		return fmt.Errorf("no tweets eligible for evaluation (min text length %d)", cfg.Eval.MinTextLength)
	}
	logger.Info("held-out sample drawn",
		zap.Int("size", len(sample)), zap.Int64("seed", cfg.Eval.Seed))

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	backoff, err := cfg.RetryBackoff()
	if err != nil {
		return err
	}

	groundTruth, err := llm.NewClient(ctx, cfg.LLM.GroundTruth, cfg.LLM.Keys, timeout)
	if err != nil {
		return fmt.Errorf("ground truth model %s: %w", cfg.LLM.GroundTruth.Name, err)
	}
	candidates := make([]eval.Candidate, 0, len(cfg.LLM.Candidates))
	for _, spec := range cfg.LLM.Candidates {
		client, err := llm.NewClient(ctx, spec, cfg.LLM.Keys, timeout)
		if err != nil {
			return fmt.Errorf("candidate model %s: %w", spec.Name, err)
		}
		candidates = append(candidates, eval.Candidate{
			Name:      spec.Name,
			Client:    client,
			CostPer1K: spec.CostPer1K,
		})
	}

	evaluator := &eval.Evaluator{
		GroundTruth:     groundTruth,
		GroundTruthName: cfg.LLM.GroundTruth.Name,
		Candidates:      candidates,
		Retry:           llm.RetryPolicy{MaxRetries: cfg.LLM.MaxRetries, BaseDelay: backoff},
	}
	results, selected, err := evaluator.Run(ctx, sample)
	if err != nil {
		return err
	}

	if err := eval.WriteResults(cfg.Eval.ResultsPath, results); err != nil {
		return err
	}
	for _, r := range results {
		marker := " "
		if r.Selected {
			marker = "*"
			if err := eval.WriteSelected(cfg.Eval.SelectedPath, r, len(sample)); err != nil {
				return err
			}
		}
		fmt.Printf("%s %-24s agreement %.3f (%d scored, %d failed)\n",
			marker, r.Model, r.MeanAgreement, r.Scored, r.Failed)
	}
	fmt.Printf("Selected %s -> %s\n", selected, cfg.Eval.SelectedPath)
	return nil
}
