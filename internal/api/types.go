package api

import "github.com/abdul-hamid-achik/videopipeline/internal/statestore"

type CreateSessionRequest struct {
	Filename  string `json:"filename"`
	TotalSize int64  `json:"totalSize"`
	MimeType  string `json:"mimeType"`
}

type ChunkUploadResponse struct {
	Success        bool    `json:"success"`
	UploadedChunks int     `json:"uploadedChunks"`
	TotalChunks    int     `json:"totalChunks"`
	Progress       float64 `json:"progress"`
}

type CompleteRequest struct {
	SessionID string `json:"sessionId"`
}

type CompleteResponse struct {
	Success bool   `json:"success"`
	VideoID string `json:"videoId"`
}

type IncompleteUploadResponse struct {
	Error         string `json:"error"`
	MissingChunks []int  `json:"missingChunks"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type QueueStatsResponse struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

func queueStatsResponse(s statestore.QueueStats) QueueStatsResponse {
	return QueueStatsResponse{Waiting: s.Waiting, Active: s.Active, Completed: s.Completed, Failed: s.Failed}
}

type StorageStatsResponse struct {
	FreeMB         float64 `json:"freeMB"`
	TempFiles      int     `json:"tempFiles"`
	ActiveSessions int     `json:"activeSessions"`
}

type CleanupResponse struct {
	Cleaned int                  `json:"cleaned"`
	Storage StorageStatsResponse `json:"storage"`
}
