package classify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tweetlab/internal/features"
	"tweetlab/internal/llm"
	"tweetlab/internal/logging"
)

// Runner classifies a set of tweets with one model. Every eligible tweet
// ends the run with exactly one terminal record in the progress log:
// done with labels, or failed with the final error.
type Runner struct {
	Client        llm.Client
	ModelName     string
	Retry         llm.RetryPolicy
	Workers       int
	MinTextLength int
	Progress      *ProgressLog
}

// Summary describes one classification run.
type Summary struct {
	RunID         string    `json:"run_id"`
	Model         string    `json:"model"`
	ProviderModel string    `json:"provider_model"`
	Total         int       `json:"total_tweets"`
	Eligible      int       `json:"eligible_tweets"`
	Classified    int       `json:"classified"`
	Failed        int       `json:"failed"`
	Resumed       int       `json:"resumed"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Run processes tweets with a bounded worker pool. Tweets already done
// per the replayed records are skipped; previously failed tweets are
// retried. A progress log write failure aborts the run, since losing
// durability would silently break resumability.
func (r *Runner) Run(ctx context.Context, tweets []features.Tweet, replayed map[string]Record) (*Summary, error) {
	if r.Workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", r.Workers)
	}

	done := DoneIDs(replayed)
	summary := &Summary{
		RunID:         uuid.New().String(),
		Model:         r.ModelName,
		ProviderModel: r.Client.Model(),
		Total:         len(tweets),
		StartedAt:     time.Now().UTC(),
	}

	eligible := make([]features.Tweet, 0, len(tweets))
	for _, t := range tweets {
		if t.ID == "" || len(strings.TrimSpace(t.Text)) <= r.MinTextLength {
			continue
		}
		if done[t.ID] {
			summary.Resumed++
			continue
		}
		eligible = append(eligible, t)
	}
	summary.Eligible = summary.Resumed + len(eligible)

	logging.Classify("run %s: %d tweets total, %d eligible, %d already done, %d to classify",
		summary.RunID, summary.Total, summary.Eligible, summary.Resumed, len(eligible))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for _, tweet := range eligible {
		tweet := tweet
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			labels, err := r.Retry.ClassifyWithRetry(gctx, r.Client, tweet.Text)
			rec := Record{
				TweetID: tweet.ID,
				Model:   r.ModelName,
				At:      time.Now().UTC(),
			}
			if err != nil {
				if gctx.Err() != nil {
					// Cancellation is not a terminal outcome; the tweet
					// stays pending for the next run.
					return gctx.Err()
				}
				rec.Status = StatusFailed
				rec.Error = err.Error()
				logging.ClassifyError("tweet %s failed terminally: %v", tweet.ID, err)
			} else {
				rec.Status = StatusDone
				rec.Labels = labels
			}

			if err := r.Progress.Append(rec); err != nil {
				return err
			}

			mu.Lock()
			if rec.Status == StatusDone {
				summary.Classified++
			} else {
				summary.Failed++
			}
			replayed[tweet.ID] = rec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification run %s aborted: %w", summary.RunID, err)
	}

	summary.FinishedAt = time.Now().UTC()
	logging.Classify("run %s finished: %d classified, %d failed, %d resumed in %v",
		summary.RunID, summary.Classified, summary.Failed, summary.Resumed,
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	return summary, nil
}
