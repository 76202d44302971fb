// Package queue implements the transcoding job fan-out and worker pool:
// a FIFO-with-priority queue (low resolution runs first), bounded worker
// concurrency, a per-worker start rate limit, and fixed-schedule retry.
package queue

import (
	"context"

	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
)

// Priority order: lower runs first. Low resolution is highest priority,
// high resolution is lowest.
var priority = map[statestore.Resolution]int{
	statestore.ResolutionLow:    1,
	statestore.ResolutionMedium: 2,
	statestore.ResolutionHigh:   3,
}

// Fixed worker/rate-limit/retry constants: not configurable.
const (
	WorkerConcurrency = 2
	MaxStartsPerWindow = 3
	StartWindow         = 60 // seconds
	MaxAttempts         = 3
)

type Job struct {
	JobID      string
	VideoID    string
	Resolution statestore.Resolution
	InputPath  string
	OutputDir  string
	Attempt    int
}

// Handler executes one job attempt. Queues call it once per attempt and
// apply the fixed retry schedule around it themselves.
type Handler func(ctx context.Context, job *Job) error

// Queue is satisfied by both the in-process LocalQueue (used when no
// external broker is configured) and the Redis-backed variant. Behavior -
// state transitions and emitted events - must be indistinguishable
// between the two from the client's perspective.
type Queue interface {
	SetHandler(h Handler)
	Submit(ctx context.Context, job *Job) error
	Start(ctx context.Context)
	Stop()
}
