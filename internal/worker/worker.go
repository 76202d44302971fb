// Package worker implements the transcoding worker contract: the single
// handler every queue implementation drives for one job attempt, owning
// the job/video state transitions and the events that accompany them.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/encoder"
	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/abdul-hamid-achik/videopipeline/internal/queue"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
)

// progressStep is the minimum percent advance required before a new
// TranscodingProgress event and state write fire.
const progressStep = 5.0

type Dependencies struct {
	Store   statestore.Store
	Bus     *eventbus.Bus
	Encoder *encoder.Encoder
}

func (d *Dependencies) emit(ctx context.Context, evType eventbus.EventType, videoID string, data interface{}) {
	d.Bus.Publish(ctx, eventbus.Event{
		Type:      evType,
		VideoID:   videoID,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func (d *Dependencies) markJobProcessing(ctx context.Context, job *queue.Job) {
	now := time.Now()
	d.Store.UpdateJob(ctx, job.JobID, func(j *statestore.TranscodingJob) {
		j.Status = statestore.JobProcessing
		j.StartedAt = &now
	})
	d.Store.UpdateVideo(ctx, job.VideoID, func(v *statestore.Video) {
		if v.Status != statestore.VideoCompleted && v.Status != statestore.VideoFailed {
			v.Status = statestore.VideoTranscoding
		}
	})
}

func (d *Dependencies) markJobCompleted(ctx context.Context, job *queue.Job, playlistURL string) {
	now := time.Now()
	d.Store.UpdateJob(ctx, job.JobID, func(j *statestore.TranscodingJob) {
		j.Status = statestore.JobCompleted
		j.Progress = 100
		j.OutputPath = playlistURL
		j.CompletedAt = &now
	})

	d.Store.UpdateVideo(ctx, job.VideoID, func(v *statestore.Video) {
		if v.HLSUrls == nil {
			v.HLSUrls = make(map[statestore.Resolution]string)
		}
		if v.Transcoding == nil {
			v.Transcoding = make(map[statestore.Resolution]float64)
		}
		v.HLSUrls[job.Resolution] = playlistURL
		v.Transcoding[job.Resolution] = 100

		allComplete := true
		for _, r := range v.Resolutions {
			if v.Transcoding[r] < 100 {
				allComplete = false
				break
			}
		}
		if allComplete && v.Status != statestore.VideoFailed {
			v.Status = statestore.VideoCompleted
			v.CompletedAt = &now
		}
	})
}

func (d *Dependencies) markJobFailed(ctx context.Context, job *queue.Job, errMsg string) {
	now := time.Now()
	d.Store.UpdateJob(ctx, job.JobID, func(j *statestore.TranscodingJob) {
		j.Status = statestore.JobFailed
		j.ErrorMessage = errMsg
		j.CompletedAt = &now
	})
	d.Store.UpdateVideo(ctx, job.VideoID, func(v *statestore.Video) {
		v.Status = statestore.VideoFailed
		v.ErrorMessage = errMsg
	})
}

// Handler returns the queue.Handler driving the worker contract for every
// job attempt: state transitions, progress persistence, and event
// emission are identical whether the call arrived from the local queue or
// the Redis-brokered one.
func Handler(deps *Dependencies) queue.Handler {
	return func(ctx context.Context, job *queue.Job) error {
		log := logger.FromContext(ctx).With("video_id", job.VideoID, "resolution", job.Resolution, "attempt", job.Attempt)

		if _, ok := deps.Store.GetJob(ctx, job.JobID); !ok {
			// The job record no longer exists; tolerate as a no-op per §5.
			// Deleting a video does not remove its jobs, so that case runs
			// on and its writes to the missing video are no-ops.
			log.Info("job target no longer exists, skipping")
			return nil
		}

		deps.markJobProcessing(ctx, job)
		deps.emit(ctx, eventbus.TranscodingStarted, job.VideoID, map[string]any{"resolution": job.Resolution})
		deps.emit(ctx, eventbus.TranscodingProgress, job.VideoID, map[string]any{"resolution": job.Resolution, "progress": 0})

		lastReported := 0.0
		onProgress := func(pct float64) {
			if pct < lastReported+progressStep && pct < 100 {
				return
			}
			lastReported = pct
			deps.Store.UpdateJob(ctx, job.JobID, func(j *statestore.TranscodingJob) { j.Progress = pct })
			deps.Store.UpdateVideo(ctx, job.VideoID, func(v *statestore.Video) {
				if v.Transcoding == nil {
					v.Transcoding = make(map[statestore.Resolution]float64)
				}
				v.Transcoding[job.Resolution] = pct
			})
			deps.emit(ctx, eventbus.TranscodingProgress, job.VideoID, map[string]any{"resolution": job.Resolution, "progress": pct})
		}

		_, err := deps.Encoder.Transcode(ctx, encoder.Job{
			InputPath:  job.InputPath,
			OutputDir:  job.OutputDir,
			Resolution: job.Resolution,
		}, onProgress)

		if err != nil {
			log.Error("transcode failed", "error", err)
			deps.markJobFailed(ctx, job, err.Error())
			deps.emit(ctx, eventbus.TranscodingFailed, job.VideoID, map[string]any{"resolution": job.Resolution, "error": err.Error()})
			return err
		}

		playlistURL := fmt.Sprintf("/stream/%s/%s/playlist.m3u8", job.VideoID, job.Resolution)
		deps.markJobCompleted(ctx, job, playlistURL)
		deps.emit(ctx, eventbus.TranscodingCompleted, job.VideoID, map[string]any{"resolution": job.Resolution, "url": playlistURL})

		log.Info("transcode completed", "playlist_url", playlistURL)
		return nil
	}
}
