package client

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SessionRef identifies one chat session row as read from the session store:
// the session id plus the row's creation time. The pair is the stable list
// identity for analysis views; Key is deterministic, not time-of-render
// dependent.
type SessionRef struct {
	SessionID string
	CreatedAt time.Time
}

// Key returns the composite identity for list rendering and deduplication.
func (r SessionRef) Key() string {
	return r.SessionID + "-" + r.CreatedAt.UTC().Format(time.RFC3339)
}

// SentimentResult is the per-session outcome of a batch fetch. Exactly one of
// Sentiment and Err is set.
type SentimentResult struct {
	Ref       SessionRef
	Sentiment *SessionSentiment
	Err       error
}

// batchWorkers bounds the fan-out so a large session list cannot open an
// unbounded number of concurrent requests.
const batchWorkers = 4

var (
	batchFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicebot",
		Subsystem: "sentiment",
		Name:      "batch_fetches_total",
		Help:      "Individual sentiment requests issued by batch fetches.",
	})
	batchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicebot",
		Subsystem: "sentiment",
		Name:      "batch_failures_total",
		Help:      "Individual sentiment requests that ended in error.",
	})
)

// SentimentBatch fans out one sentiment request per session and reports a
// result per item, preserving input order. Failures are carried in the row's
// Err field so callers can render partial data; cancellation of ctx stops
// issuing new requests and marks the remaining rows with ctx.Err().
func (c *Client) SentimentBatch(ctx context.Context, assistantID string, refs []SessionRef) []SentimentResult {
	results := make([]SentimentResult, len(refs))
	sem := make(chan struct{}, batchWorkers)
	var wg sync.WaitGroup

	for i, ref := range refs {
		results[i].Ref = ref

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, ref SessionRef) {
			defer wg.Done()
			defer func() { <-sem }()

			batchFetchesTotal.Inc()
			sentiment, err := c.GetSentiment(ctx, assistantID, ref.SessionID)
			if err != nil {
				batchFailuresTotal.Inc()
				results[i].Err = err
				return
			}
			results[i].Sentiment = sentiment
		}(i, ref)
	}

	wg.Wait()
	return results
}

// SentimentBatchStrict is the all-or-nothing join: if any single request
// fails, the whole batch is reported as one error and no rows are returned.
// The first failure cancels every request still in flight.
func (c *Client) SentimentBatchStrict(ctx context.Context, assistantID string, refs []SessionRef) ([]SentimentResult, error) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]SentimentResult, len(refs))
	sem := make(chan struct{}, batchWorkers)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i, ref := range refs {
		results[i].Ref = ref

		select {
		case <-batchCtx.Done():
			errOnce.Do(func() { firstErr = batchCtx.Err() })
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, ref SessionRef) {
			defer wg.Done()
			defer func() { <-sem }()

			batchFetchesTotal.Inc()
			sentiment, err := c.GetSentiment(batchCtx, assistantID, ref.SessionID)
			if err != nil {
				batchFailuresTotal.Inc()
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[i].Sentiment = sentiment
		}(i, ref)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
