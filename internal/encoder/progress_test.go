package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDurationBanner(t *testing.T) {
	d, ok := parseDurationBanner("  Duration: 00:03:24.51, start: 0.000000, bitrate: 1234 kb/s")
	require.True(t, ok)
	require.InDelta(t, 204.51, d, 0.001)
}

func TestParseDurationBannerIgnoresOtherLines(t *testing.T) {
	_, ok := parseDurationBanner("  Stream #0:0: Video: h264")
	require.False(t, ok)
}

func TestParseTimecode(t *testing.T) {
	s, ok := parseTimecode("01:00:00.00")
	require.True(t, ok)
	require.Equal(t, 3600.0, s)
}

func TestParseOutTimeMs(t *testing.T) {
	s, ok := parseOutTimeMs("out_time_ms=5000000")
	require.True(t, ok)
	require.Equal(t, 5.0, s)
}

func TestParseOutTimeMsIgnoresOtherKeys(t *testing.T) {
	_, ok := parseOutTimeMs("frame=120")
	require.False(t, ok)
}

func TestPresetFor(t *testing.T) {
	low := PresetFor("low")
	require.Equal(t, 640, low.Width)
	require.Equal(t, "800k", low.VideoBitrate)

	high := PresetFor("high")
	require.Equal(t, 1920, high.Width)
}

func TestBuildHLSArgsContainsFixedParams(t *testing.T) {
	args := buildHLSArgs("/tmp/in.mp4", "/tmp/out", "/tmp/out/playlist.m3u8", PresetFor("medium"))
	joined := ""
	for _, a := range args {
		joined += a + " "
	}
	require.Contains(t, joined, "libx264")
	require.Contains(t, joined, "2500k")
	require.Contains(t, joined, "-hls_time 4 ")
	require.Contains(t, joined, "segment_%03d.ts")
}
