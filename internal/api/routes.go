package api

import "net/http"

// NewRouter wires the upload coordinator, video/queue/storage
// introspection, and streaming routes. Metrics and tracing middleware are
// layered on by the caller (cmd/server), keeping router construction
// separate from middleware wrapping; the streaming handlers set their own
// CORS header.
func NewRouter(cfg *Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload/session", CreateSessionHandler(cfg))
	mux.HandleFunc("GET /upload/session/{id}", GetSessionHandler(cfg))
	mux.HandleFunc("POST /upload/chunk", UploadChunkHandler(cfg))
	mux.HandleFunc("POST /upload/complete", CompleteUploadHandler(cfg))

	mux.HandleFunc("GET /videos", ListVideosHandler(cfg))
	mux.HandleFunc("GET /videos/{id}", GetVideoHandler(cfg))
	mux.HandleFunc("DELETE /videos/{id}", DeleteVideoHandler(cfg))

	mux.HandleFunc("GET /queue/stats", QueueStatsHandler(cfg))

	mux.HandleFunc("POST /storage/cleanup", StorageCleanupHandler(cfg))
	mux.HandleFunc("GET /storage/stats", StorageStatsHandler(cfg))

	mux.HandleFunc("GET /stream/{id}/{res}/playlist.m3u8", StreamPlaylistHandler(cfg))
	mux.HandleFunc("GET /stream/{id}/{res}/{segment}", StreamSegmentHandler(cfg))

	return mux
}
