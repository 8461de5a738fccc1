package llm

import (
	"context"
	"fmt"
	"time"

	"tweetlab/internal/logging"
)

// RetryPolicy bounds retries of transient API failures, independent of
// any particular transport. Attempt n (1-based) sleeps
// BaseDelay << (n-1) before retrying: 1s, 2s, 4s with the defaults.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second}
}

// Do runs fn up to 1+MaxRetries times. Terminal errors and context
// cancellation return immediately; transient errors back off and retry
// until the budget is exhausted.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << uint(attempt-1)
			logging.APIDebug("%s: retry %d/%d after %v: %v", op, attempt, p.MaxRetries, delay, lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%s: retry budget exhausted after %d attempts: %w", op, p.MaxRetries+1, lastErr)
}

// ClassifyWithRetry classifies one text with the policy applied.
func (p RetryPolicy) ClassifyWithRetry(ctx context.Context, client Client, text string) (*Labels, error) {
	var labels *Labels
	err := p.Do(ctx, "classify", func(ctx context.Context) error {
		var err error
		labels, err = client.Classify(ctx, text)
		return err
	})
	return labels, err
}
