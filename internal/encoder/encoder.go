// Package encoder drives the external ffmpeg/ffprobe binaries to produce
// an HLS rendition of a source video at one of the three fixed target
// resolutions. It only shells out to ffmpeg/ffprobe and interprets their
// output; it never links a transcoding library directly.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
)

var (
	ErrEncoderNotFound = errors.New("encoder: ffmpeg or ffprobe not found in PATH")
	ErrTranscodeFailed = errors.New("encoder: transcode failed")
)

// ProgressFunc is invoked as encoding advances. While ffmpeg runs, pct is
// clamped to [0, 99]; 100 is reported once, after ffmpeg exits
// successfully and just before Transcode returns.
type ProgressFunc func(pct float64)

type Encoder struct {
	ffmpegPath  string
	ffprobePath string
}

func New() (*Encoder, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, ErrEncoderNotFound
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, ErrEncoderNotFound
	}
	return &Encoder{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// Job describes one resolution's HLS transcode.
type Job struct {
	InputPath    string
	OutputDir    string // playlist + segments are written here
	Resolution   statestore.Resolution
	PlaylistName string // defaults to "playlist.m3u8"
}

func (j Job) playlistName() string {
	if j.PlaylistName != "" {
		return j.PlaylistName
	}
	return "playlist.m3u8"
}

// Transcode runs ffmpeg to completion, reporting progress via onProgress
// (may be nil). It returns the path to the generated playlist: OutputDir
// joined with the playlist name.
func (e *Encoder) Transcode(ctx context.Context, job Job, onProgress ProgressFunc) (string, error) {
	duration, err := e.probeDuration(ctx, job.InputPath)
	if err != nil {
		// Progress reporting degrades gracefully without a known duration;
		// the transcode itself doesn't depend on it.
		duration = 0
	}

	preset := PresetFor(job.Resolution)
	playlistPath := fmt.Sprintf("%s/%s", job.OutputDir, job.playlistName())
	args := buildHLSArgs(job.InputPath, job.OutputDir, playlistPath, preset)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}

	done := make(chan struct{})
	go watchProgress(stderr, stdout, duration, onProgress, done)

	err = cmd.Wait()
	<-done
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}

	if onProgress != nil {
		onProgress(100)
	}
	return playlistPath, nil
}

func buildHLSArgs(inputPath, outputDir, playlistPath string, p Preset) []string {
	scale := fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2", p.Width, p.Height, p.Width, p.Height)
	segmentPattern := fmt.Sprintf("%s/%s", outputDir, SegmentTemplate)

	return []string{
		"-y",
		"-i", inputPath,
		"-vf", scale,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprintf("%d", CRF),
		"-b:v", p.VideoBitrate,
		"-maxrate", p.MaxBitrate,
		"-bufsize", p.BufSize,
		"-c:a", "aac",
		"-b:a", AudioBitrate,
		"-ar", fmt.Sprintf("%d", AudioSampleRate),
		"-ac", "2",
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", HLSSegmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", segmentPattern,
		"-progress", "pipe:1",
		"-nostats",
		playlistPath,
	}
}
