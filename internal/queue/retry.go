package queue

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/metrics"
	"github.com/cenkalti/backoff/v4"
)

// runWithRetry drives handler(ctx, job) with exponential backoff starting at
// 1s and doubling (1s, then 2s) for up to MaxAttempts total attempts. job.Attempt is updated in
// place before each call so the handler can stamp it on the job record.
func runWithRetry(ctx context.Context, job *Job, handler Handler) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	bounded := backoff.WithMaxRetries(b, MaxAttempts-1)

	attempt := 0
	op := func() error {
		attempt++
		job.Attempt = attempt
		err := handler(ctx, job)
		if err != nil && attempt < MaxAttempts {
			metrics.RecordJobRetry(string(job.Resolution))
		}
		return err
	}

	return backoff.Retry(op, backoff.WithContext(bounded, ctx))
}
