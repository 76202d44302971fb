package worker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/queue"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
)

func newTestDeps(t *testing.T) *Dependencies {
	t.Helper()
	return &Dependencies{Store: statestore.NewInMemory(), Bus: eventbus.New(nil)}
}

func seedJobAndVideo(t *testing.T, deps *Dependencies, resolutions ...statestore.Resolution) (*statestore.TranscodingJob, string) {
	t.Helper()
	ctx := t.Context()

	videoID := "video-1"
	require.NoError(t, deps.Store.CreateVideo(ctx, &statestore.Video{
		ID:          videoID,
		Status:      statestore.VideoQueued,
		Resolutions: resolutions,
		Transcoding: make(map[statestore.Resolution]float64),
		HLSUrls:     make(map[statestore.Resolution]string),
	}))

	job := &statestore.TranscodingJob{
		ID:         "job-1",
		VideoID:    videoID,
		Resolution: resolutions[0],
		Status:     statestore.JobPending,
	}
	require.NoError(t, deps.Store.CreateJob(ctx, job))
	return job, videoID
}

func TestHandlerSkipsWhenJobDeletedMidFlight(t *testing.T) {
	deps := newTestDeps(t)
	handler := Handler(deps)

	err := handler(t.Context(), &queue.Job{JobID: "missing-job", VideoID: "video-x", Resolution: statestore.ResolutionLow})
	require.NoError(t, err)
}

func TestMarkJobProcessingTransitionsVideoToTranscoding(t *testing.T) {
	deps := newTestDeps(t)
	job, videoID := seedJobAndVideo(t, deps, statestore.ResolutionLow)

	deps.markJobProcessing(t.Context(), &queue.Job{JobID: job.ID, VideoID: videoID, Resolution: job.Resolution})

	updatedJob, ok := deps.Store.GetJob(t.Context(), job.ID)
	require.True(t, ok)
	require.Equal(t, statestore.JobProcessing, updatedJob.Status)
	require.NotNil(t, updatedJob.StartedAt)

	video, ok := deps.Store.GetVideo(t.Context(), videoID)
	require.True(t, ok)
	require.Equal(t, statestore.VideoTranscoding, video.Status)
}

func TestMarkJobCompletedSetsVideoCompletedWhenAllResolutionsDone(t *testing.T) {
	deps := newTestDeps(t)
	job, videoID := seedJobAndVideo(t, deps, statestore.ResolutionLow)

	deps.markJobCompleted(t.Context(), &queue.Job{JobID: job.ID, VideoID: videoID, Resolution: job.Resolution}, "/stream/video-1/low/playlist.m3u8")

	video, ok := deps.Store.GetVideo(t.Context(), videoID)
	require.True(t, ok)
	require.Equal(t, statestore.VideoCompleted, video.Status)
	require.NotNil(t, video.CompletedAt)
	require.Equal(t, "/stream/video-1/low/playlist.m3u8", video.HLSUrls[statestore.ResolutionLow])
	require.Equal(t, float64(100), video.Transcoding[statestore.ResolutionLow])
}

func TestMarkJobCompletedLeavesVideoTranscodingWhenResolutionsRemain(t *testing.T) {
	deps := newTestDeps(t)
	job, videoID := seedJobAndVideo(t, deps, statestore.ResolutionLow, statestore.ResolutionHigh)

	deps.markJobCompleted(t.Context(), &queue.Job{JobID: job.ID, VideoID: videoID, Resolution: job.Resolution}, "/stream/video-1/low/playlist.m3u8")

	video, ok := deps.Store.GetVideo(t.Context(), videoID)
	require.True(t, ok)
	require.NotEqual(t, statestore.VideoCompleted, video.Status)
}

func TestMarkJobFailedSetsVideoFailed(t *testing.T) {
	deps := newTestDeps(t)
	job, videoID := seedJobAndVideo(t, deps, statestore.ResolutionLow)

	deps.markJobFailed(t.Context(), &queue.Job{JobID: job.ID, VideoID: videoID, Resolution: job.Resolution}, "ffmpeg exited 1")

	video, ok := deps.Store.GetVideo(t.Context(), videoID)
	require.True(t, ok)
	require.Equal(t, statestore.VideoFailed, video.Status)
	require.Equal(t, "ffmpeg exited 1", video.ErrorMessage)

	updatedJob, ok := deps.Store.GetJob(t.Context(), job.ID)
	require.True(t, ok)
	require.Equal(t, statestore.JobFailed, updatedJob.Status)
}
