package eval

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetlab/internal/features"
	"tweetlab/internal/llm"
)

// fakeClient returns canned labels per tweet text.
type fakeClient struct {
	model  string
	labels map[string]llm.Labels
	fail   map[string]error
}

func (f *fakeClient) Classify(ctx context.Context, text string) (*llm.Labels, error) {
	if err, ok := f.fail[text]; ok {
		return nil, err
	}
	l, ok := f.labels[text]
	if !ok {
		l = llm.Labels{HumorType: "none", TopicCategory: "general", CritiqueType: "none"}
	}
	return &l, nil
}

func (f *fakeClient) Model() string { return f.model }

func sampleTweets(texts ...string) []features.Tweet {
	out := make([]features.Tweet, len(texts))
	for i, text := range texts {
		out[i] = features.Tweet{ID: string(rune('a' + i)), Text: text}
	}
	return out
}

func fastRetry() llm.RetryPolicy {
	return llm.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond}
}

func TestEvaluatorScoresAndSelects(t *testing.T) {
	truth := llm.Labels{HumorType: "absurdist", TopicCategory: "tech", HasDataReference: true, CritiqueType: "none"}
	nearMiss := truth
	nearMiss.TopicCategory = "housing"

	gt := &fakeClient{model: "gt", labels: map[string]llm.Labels{
		"t1": truth, "t2": truth,
	}}
	perfect := &fakeClient{model: "m-perfect", labels: map[string]llm.Labels{
		"t1": truth, "t2": truth,
	}}
	sloppy := &fakeClient{model: "m-sloppy", labels: map[string]llm.Labels{
		"t1": nearMiss, "t2": nearMiss,
	}}

	e := &Evaluator{
		GroundTruth:     gt,
		GroundTruthName: "gt",
		Candidates: []Candidate{
			{Name: "sloppy", Client: sloppy, CostPer1K: 0.1},
			{Name: "perfect", Client: perfect, CostPer1K: 0.2},
		},
		Retry: fastRetry(),
	}
	results, selected, err := e.Run(context.Background(), sampleTweets("t1", "t2"))
	require.NoError(t, err)
	assert.Equal(t, "perfect", selected)

	require.Len(t, results, 2)
	assert.Equal(t, 0.8, results[0].MeanAgreement)
	assert.Equal(t, 1.0, results[1].MeanAgreement)
	assert.True(t, results[1].Selected)
	assert.False(t, results[0].Selected)
	assert.Equal(t, 2, results[1].Scored)
}

func TestEvaluatorTieBreaksOnCost(t *testing.T) {
	truth := llm.Labels{HumorType: "none", TopicCategory: "tech", CritiqueType: "none"}
	gt := &fakeClient{model: "gt", labels: map[string]llm.Labels{"t1": truth}}
	a := &fakeClient{model: "a", labels: map[string]llm.Labels{"t1": truth}}
	b := &fakeClient{model: "b", labels: map[string]llm.Labels{"t1": truth}}

	e := &Evaluator{
		GroundTruth: gt,
		Candidates: []Candidate{
			{Name: "expensive", Client: a, CostPer1K: 0.5},
			{Name: "cheap", Client: b, CostPer1K: 0.1},
		},
		Retry: fastRetry(),
	}
	_, selected, err := e.Run(context.Background(), sampleTweets("t1"))
	require.NoError(t, err)
	assert.Equal(t, "cheap", selected)
}

func TestEvaluatorTieBreaksOnOrderWhenCostsEqual(t *testing.T) {
	truth := llm.Labels{HumorType: "none", TopicCategory: "tech", CritiqueType: "none"}
	gt := &fakeClient{model: "gt", labels: map[string]llm.Labels{"t1": truth}}
	a := &fakeClient{model: "a", labels: map[string]llm.Labels{"t1": truth}}
	b := &fakeClient{model: "b", labels: map[string]llm.Labels{"t1": truth}}

	e := &Evaluator{
		GroundTruth: gt,
		Candidates: []Candidate{
			{Name: "first", Client: a, CostPer1K: 0.1},
			{Name: "second", Client: b, CostPer1K: 0.1},
		},
		Retry: fastRetry(),
	}
	_, selected, err := e.Run(context.Background(), sampleTweets("t1"))
	require.NoError(t, err)
	assert.Equal(t, "first", selected)
}

func TestEvaluatorSkipsTweetsWithoutGroundTruth(t *testing.T) {
	truth := llm.Labels{HumorType: "none", TopicCategory: "tech", CritiqueType: "none"}
	gt := &fakeClient{
		model:  "gt",
		labels: map[string]llm.Labels{"good": truth},
		fail:   map[string]error{"bad": &llm.APIError{Provider: "gt", StatusCode: 400, Message: "nope"}},
	}
	cand := &fakeClient{model: "c", labels: map[string]llm.Labels{"good": truth, "bad": truth}}

	e := &Evaluator{
		GroundTruth: gt,
		Candidates:  []Candidate{{Name: "c", Client: cand}},
		Retry:       fastRetry(),
	}
	results, _, err := e.Run(context.Background(), sampleTweets("good", "bad"))
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Scored, "the skipped tweet scores no candidate")
}

func TestEvaluatorAllGroundTruthFailures(t *testing.T) {
	gt := &fakeClient{
		model: "gt",
		fail:  map[string]error{"t1": &llm.APIError{StatusCode: 400, Message: "no"}},
	}
	e := &Evaluator{
		GroundTruth:     gt,
		GroundTruthName: "gt",
		Candidates:      []Candidate{{Name: "c", Client: &fakeClient{model: "c"}}},
		Retry:           fastRetry(),
	}
	_, _, err := e.Run(context.Background(), sampleTweets("t1"))
	require.Error(t, err)
}

func TestEvaluatorCandidateFailureDoesNotAbort(t *testing.T) {
	truth := llm.Labels{HumorType: "none", TopicCategory: "tech", CritiqueType: "none"}
	gt := &fakeClient{model: "gt", labels: map[string]llm.Labels{"t1": truth}}
	broken := &fakeClient{model: "x", fail: map[string]error{
		"t1": &llm.APIError{StatusCode: 401, Message: "bad key"},
	}}
	fine := &fakeClient{model: "y", labels: map[string]llm.Labels{"t1": truth}}

	e := &Evaluator{
		GroundTruth: gt,
		Candidates: []Candidate{
			{Name: "broken", Client: broken},
			{Name: "fine", Client: fine},
		},
		Retry: fastRetry(),
	}
	results, selected, err := e.Run(context.Background(), sampleTweets("t1"))
	require.NoError(t, err)
	assert.Equal(t, "fine", selected)
	assert.Equal(t, 1, results[0].Failed)
	assert.Equal(t, 0, results[0].Scored)
}

func TestWriteAndReadSelected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "selected_model.txt")
	r := Result{Model: "gemini-2.5-flash-lite", MeanAgreement: 0.87, Scored: 18}
	require.NoError(t, WriteSelected(path, r, 20))

	name, err := ReadSelected(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-lite", name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0.8700")
}

func TestReadSelectedEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selected_model.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))
	_, err := ReadSelected(path)
	require.Error(t, err)
}

func TestWriteResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []Result{
		{Model: "a", ProviderModel: "prov/a", MeanAgreement: 0.75, Scored: 20, CostPer1K: 0.1},
		{Model: "b", ProviderModel: "prov/b", MeanAgreement: 0.9, Scored: 19, Failed: 1, Selected: true},
	}
	require.NoError(t, WriteResults(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "mean_agreement")
	assert.Contains(t, lines[2], "true")
}
