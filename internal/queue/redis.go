package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// redisKeys lists the three priority lists in priority order; BRPOP checks
// keys left-to-right and pops from the first non-empty one, which gives us
// FIFO-with-priority for free on the broker side.
var redisKeys = []string{
	"videopipeline:queue:low",
	"videopipeline:queue:medium",
	"videopipeline:queue:high",
}

func keyFor(res string) string {
	switch res {
	case "low":
		return redisKeys[0]
	case "medium":
		return redisKeys[1]
	default:
		return redisKeys[2]
	}
}

// RedisQueue is the brokered transport: jobs are pushed onto Redis lists
// and popped via BRPOP, so a second server replica could in principle
// compete for work. The consumer loop still lives in this process and
// still calls the state store directly after popping; only the queue's
// backing store changes, not the state-ownership model.
type RedisQueue struct {
	client   *redis.Client
	limiters []*rate.Limiter
	handler  Handler

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	limiters := make([]*rate.Limiter, WorkerConcurrency)
	for i := range limiters {
		limiters[i] = rate.NewLimiter(rate.Limit(float64(MaxStartsPerWindow)/float64(StartWindow)), MaxStartsPerWindow)
	}
	return &RedisQueue{
		client:   client,
		limiters: limiters,
	}
}

func (q *RedisQueue) SetHandler(h Handler) { q.handler = h }

func (q *RedisQueue) Submit(ctx context.Context, job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, keyFor(string(job.Resolution)), payload).Err()
}

func (q *RedisQueue) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	for i := 0; i < WorkerConcurrency; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

func (q *RedisQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

func (q *RedisQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	log := logger.FromContext(ctx).With("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(ctx, 5*time.Second, redisKeys...).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("brpop failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Error("failed to decode queued job", "error", err)
			continue
		}

		if err := q.limiters[id].Wait(ctx); err != nil {
			return
		}

		if q.handler == nil {
			continue
		}

		if err := runWithRetry(ctx, &job, q.handler); err != nil {
			log.Error("job failed after retries", "video_id", job.VideoID, "resolution", job.Resolution, "error", err)
		}
	}
}
