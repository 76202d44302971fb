package statestore

import "time"

type VideoStatus string

const (
	VideoUploading        VideoStatus = "uploading"
	VideoUploadCompleted  VideoStatus = "upload_completed"
	VideoQueued           VideoStatus = "queued"
	VideoTranscoding      VideoStatus = "transcoding"
	VideoCompleted        VideoStatus = "completed"
	VideoFailed           VideoStatus = "failed"
)

type Resolution string

const (
	ResolutionLow    Resolution = "low"
	ResolutionMedium Resolution = "medium"
	ResolutionHigh   Resolution = "high"
)

// Resolutions lists every target resolution a video is transcoded to, in
// queue-priority order (low first).
var Resolutions = []Resolution{ResolutionLow, ResolutionMedium, ResolutionHigh}

type Video struct {
	ID           string                  `json:"id"`
	Filename     string                  `json:"filename"`
	Size         int64                   `json:"size"`
	MimeType     string                  `json:"mimeType"`
	Status       VideoStatus             `json:"status"`
	UploadPct    float64                 `json:"uploadPct"`
	Transcoding  map[Resolution]float64  `json:"transcoding"` // sparse
	HLSUrls      map[Resolution]string   `json:"hlsUrls"`     // sparse
	Resolutions  []Resolution            `json:"resolutions"` // which resolutions this video targets; always Resolutions today
	ErrorMessage string                  `json:"error,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	CompletedAt  *time.Time              `json:"completedAt,omitempty"`
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
)

type UploadSession struct {
	ID             string        `json:"id"`
	VideoID        string        `json:"videoId"`
	Filename       string        `json:"filename"`
	TotalSize      int64         `json:"totalSize"`
	ChunkSize      int64         `json:"chunkSize"`
	TotalChunks    int           `json:"totalChunks"`
	ReceivedChunks map[int]bool  `json:"receivedChunks"`
	Status         SessionStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	ExpiresAt      time.Time     `json:"expiresAt"`
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

type TranscodingJob struct {
	ID           string      `json:"id"`
	VideoID      string      `json:"videoId"`
	Resolution   Resolution  `json:"resolution"`
	Status       JobStatus   `json:"status"`
	Progress     float64     `json:"progress"`
	InputPath    string      `json:"-"`
	OutputPath   string      `json:"outputPath,omitempty"`
	ErrorMessage string      `json:"error,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	StartedAt    *time.Time  `json:"startedAt,omitempty"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
}

type QueueStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}
