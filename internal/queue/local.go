package queue

import (
	"context"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"golang.org/x/time/rate"
)

// LocalQueue is the degraded/default mode: no external broker, jobs run
// in-process on WorkerConcurrency workers, so at most two of a video's
// three resolutions run at the same time. It drives the same
// Handler and the same retry schedule as the brokered path, so the worker
// contract, and therefore observable state transitions and events, is
// identical either way.
type LocalQueue struct {
	lanes    *lanes
	limiters []*rate.Limiter
	handler  Handler

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewLocalQueue() *LocalQueue {
	limiters := make([]*rate.Limiter, WorkerConcurrency)
	for i := range limiters {
		limiters[i] = rate.NewLimiter(rate.Limit(float64(MaxStartsPerWindow)/float64(StartWindow)), MaxStartsPerWindow)
	}
	return &LocalQueue{
		lanes:    newLanes(),
		limiters: limiters,
	}
}

func (q *LocalQueue) SetHandler(h Handler) { q.handler = h }

func (q *LocalQueue) Submit(ctx context.Context, job *Job) error {
	q.lanes.push(job)
	return nil
}

func (q *LocalQueue) Start(ctx context.Context) {
	for i := 0; i < WorkerConcurrency; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *LocalQueue) Stop() {
	q.stopOnce.Do(func() {
		q.lanes.close()
	})
	q.wg.Wait()
}

func (q *LocalQueue) Waiting() int {
	return q.lanes.waiting()
}

func (q *LocalQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	log := logger.FromContext(ctx).With("worker", id)

	for {
		job, ok := q.lanes.pop()
		if !ok {
			return
		}

		if err := q.limiters[id].Wait(ctx); err != nil {
			log.Warn("rate limiter wait aborted", "error", err)
			return
		}

		if q.handler == nil {
			continue
		}

		start := time.Now()
		err := runWithRetry(ctx, job, q.handler)
		if err != nil {
			log.Error("job failed after retries", "video_id", job.VideoID, "resolution", job.Resolution, "error", err, "duration", time.Since(start))
		}
	}
}
