package llm

import (
	"context"
	"time"
)

// Client classifies tweet text with one model at one provider. Classify
// issues a single request; retry is layered on top via RetryPolicy so
// the policy stays independent of the transport.
type Client interface {
	Classify(ctx context.Context, tweetText string) (*Labels, error)
	Model() string
}

// minRequestSpacing paces requests per client so bursts of workers do
// not trip provider rate limits immediately.
const minRequestSpacing = 100 * time.Millisecond
