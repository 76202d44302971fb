package encoder

import "github.com/abdul-hamid-achik/videopipeline/internal/statestore"

// Preset describes one target resolution's fixed encode parameters.
// Constant-rate-factor, segment duration, and audio parameters are shared
// across resolutions; only dimensions and bitrate vary.
type Preset struct {
	Width, Height int
	VideoBitrate  string // target
	MaxBitrate    string // 2x target, HLS buffer cap
	BufSize       string
}

var presets = map[statestore.Resolution]Preset{
	statestore.ResolutionLow:    {Width: 640, Height: 360, VideoBitrate: "800k", MaxBitrate: "1600k", BufSize: "1600k"},
	statestore.ResolutionMedium: {Width: 1280, Height: 720, VideoBitrate: "2500k", MaxBitrate: "5000k", BufSize: "5000k"},
	statestore.ResolutionHigh:   {Width: 1920, Height: 1080, VideoBitrate: "5000k", MaxBitrate: "10000k", BufSize: "10000k"},
}

func PresetFor(res statestore.Resolution) Preset {
	return presets[res]
}

const (
	CRF               = 23
	AudioBitrate      = "128k"
	AudioSampleRate   = 44100
	HLSSegmentSeconds = 4
	SegmentTemplate   = "segment_%03d.ts"
)
