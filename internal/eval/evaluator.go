package eval

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"tweetlab/internal/features"
	"tweetlab/internal/llm"
	"tweetlab/internal/logging"
)

// Candidate is one model under evaluation.
type Candidate struct {
	Name      string
	Client    llm.Client
	CostPer1K float64
}

// Result is the evaluation outcome for one candidate.
type Result struct {
	Model         string
	ProviderModel string
	MeanAgreement float64
	Scored        int
	Failed        int
	CostPer1K     float64
	Selected      bool
}

// Evaluator scores candidates against a ground-truth model over a
// held-out sample and picks the best one.
type Evaluator struct {
	GroundTruth     llm.Client
	GroundTruthName string
	Candidates      []Candidate
	Retry           llm.RetryPolicy
}

// Run evaluates every candidate on the sample. For each tweet the ground
// truth is fetched first; tweets whose ground-truth call fails even
// after retries are skipped for all candidates so every candidate is
// scored on the same set. Candidate calls for one tweet run in parallel.
// Returns results in candidate order with exactly one marked Selected,
// plus the selected candidate's name.
func (e *Evaluator) Run(ctx context.Context, sample []features.Tweet) ([]Result, string, error) {
	if len(e.Candidates) == 0 {
		return nil, "", fmt.Errorf("no candidate models configured")
	}
	if len(sample) == 0 {
		return nil, "", fmt.Errorf("empty evaluation sample")
	}

	timer := logging.StartTimer(logging.CategoryEval, "model evaluation")
	agreements := make([][]float64, len(e.Candidates))
	failures := make([]int, len(e.Candidates))
	skipped := 0

	for i, tweet := range sample {
		truth, err := e.Retry.ClassifyWithRetry(ctx, e.GroundTruth, tweet.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			logging.EvalError("ground truth failed for tweet %s, skipping: %v", tweet.ID, err)
			skipped++
			continue
		}
		logging.Eval("tweet %d/%d: ground truth humor=%s topic=%s",
			i+1, len(sample), truth.HumorType, truth.TopicCategory)

		scores := make([]float64, len(e.Candidates))
		errs := make([]error, len(e.Candidates))
		g, gctx := errgroup.WithContext(ctx)
		for ci, cand := range e.Candidates {
			ci, cand := ci, cand
			g.Go(func() error {
				labels, err := e.Retry.ClassifyWithRetry(gctx, cand.Client, tweet.Text)
				if err != nil {
					errs[ci] = err
					return nil // a candidate failure must not cancel its peers
				}
				scores[ci] = llm.Agreement(*truth, *labels)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, "", err
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		for ci := range e.Candidates {
			if errs[ci] != nil {
				failures[ci]++
				logging.EvalError("candidate %s failed on tweet %s: %v",
					e.Candidates[ci].Name, tweet.ID, errs[ci])
				continue
			}
			agreements[ci] = append(agreements[ci], scores[ci])
		}
	}

	if skipped == len(sample) {
		return nil, "", fmt.Errorf("ground truth model %s failed on every sampled tweet", e.GroundTruthName)
	}

	results := make([]Result, len(e.Candidates))
	for ci, cand := range e.Candidates {
		mean := 0.0
		if len(agreements[ci]) > 0 {
			mean = stat.Mean(agreements[ci], nil)
		}
		results[ci] = Result{
			Model:         cand.Name,
			ProviderModel: cand.Client.Model(),
			MeanAgreement: mean,
			Scored:        len(agreements[ci]),
			Failed:        failures[ci],
			CostPer1K:     cand.CostPer1K,
		}
	}

	best := selectBest(results)
	results[best].Selected = true
	logging.Eval("selected %s agreement=%.3f over %d tweets",
		results[best].Model, results[best].MeanAgreement, results[best].Scored)
	timer.StopWithInfo()
	return results, results[best].Model, nil
}

// selectBest picks the highest mean agreement among candidates that
// scored at least one tweet. Ties break toward lower cost, then toward
// declaration order.
func selectBest(results []Result) int {
	best := 0
	for i := 1; i < len(results); i++ {
		if results[best].Scored == 0 && results[i].Scored > 0 {
			best = i
			continue
		}
		if results[i].Scored == 0 {
			continue
		}
		switch {
		case results[i].MeanAgreement > results[best].MeanAgreement:
			best = i
		case results[i].MeanAgreement == results[best].MeanAgreement &&
			results[i].CostPer1K < results[best].CostPer1K:
			best = i
		}
	}
	return best
}

// WriteResults writes the per-candidate scores as CSV.
func WriteResults(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model", "provider_model", "mean_agreement", "scored", "failed", "cost_per_1k", "selected"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Model,
			r.ProviderModel,
			strconv.FormatFloat(r.MeanAgreement, 'f', 4, 64),
			strconv.Itoa(r.Scored),
			strconv.Itoa(r.Failed),
			strconv.FormatFloat(r.CostPer1K, 'f', -1, 64),
			strconv.FormatBool(r.Selected),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSelected records the winning model. The first line is the model
// name so ReadSelected stays trivial; the rest is provenance for humans.
func WriteSelected(path string, selected Result, sampleSize int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", selected.Model)
	fmt.Fprintf(&b, "# mean agreement: %.4f over %d tweets\n", selected.MeanAgreement, selected.Scored)
	fmt.Fprintf(&b, "# sample size: %d\n", sampleSize)
	fmt.Fprintf(&b, "# selected at: %s\n", time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write selected model: %w", err)
	}
	return nil
}

// ReadSelected returns the model name recorded by WriteSelected.
func ReadSelected(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read selected model: %w", err)
	}
	first, _, _ := strings.Cut(string(data), "\n")
	name := strings.TrimSpace(first)
	if name == "" {
		return "", fmt.Errorf("selected model file %s is empty", path)
	}
	return name, nil
}
