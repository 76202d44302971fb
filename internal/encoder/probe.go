package encoder

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
)

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

// probeDuration shells out to ffprobe for the container duration in
// seconds, used to turn ffmpeg's out_time_ms progress into a percentage.
func (e *Encoder) probeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, err
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(parsed.Format.Duration, 64)
}
