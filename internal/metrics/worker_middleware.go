package metrics

import (
	"context"
	"time"
)

// JobHandler is the shape of a single job execution, keyed by the job's
// target resolution for per-resolution metrics.
type JobHandler func(ctx context.Context, resolution string) error

func JobMetricsMiddleware(next JobHandler) JobHandler {
	return func(ctx context.Context, resolution string) error {
		start := time.Now()
		WorkerPoolActiveJobs.Inc()
		defer WorkerPoolActiveJobs.Dec()

		err := next(ctx, resolution)

		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}

		RecordJobProcessed(resolution, status, duration)
		return err
	}
}
