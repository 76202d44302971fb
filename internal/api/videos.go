package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/abdul-hamid-achik/videopipeline/internal/apperror"
	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
)

func ListVideosHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos := cfg.Store.ListVideos(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(videos)
	}
}

func GetVideoHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		video, ok := cfg.Store.GetVideo(r.Context(), id)
		if !ok {
			apperror.WriteJSON(w, r, apperror.ErrVideoNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(video)
	}
}

func DeleteVideoHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		id := r.PathValue("id")

		video, ok := cfg.Store.GetVideo(r.Context(), id)
		if !ok {
			apperror.WriteJSON(w, r, apperror.ErrVideoNotFound)
			return
		}

		if err := cfg.Disk.RemoveVideoTree(id); err != nil {
			log.Warn("failed to remove transcoded tree", "video_id", id, "error", err)
		}
		if err := cfg.Disk.RemoveUpload(id, filepath.Ext(video.Filename)); err != nil {
			log.Warn("failed to remove uploaded source", "video_id", id, "error", err)
		}

		cfg.Store.DeleteVideo(r.Context(), id)

		log.Info("video deleted", "video_id", id)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(DeleteResponse{Success: true})
	}
}

func QueueStatsHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := cfg.Store.QueueStats(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(queueStatsResponse(stats))
	}
}

func storageStats(cfg *Config, r *http.Request) StorageStatsResponse {
	var freeMB float64
	if free, err := cfg.Disk.FreeBytes(); err == nil {
		freeMB = float64(free) / (1024 * 1024)
	}
	tempFiles, _ := cfg.Disk.ListTempFiles()
	active := cfg.Store.ListActiveSessionIDs(r.Context())
	return StorageStatsResponse{
		FreeMB:         freeMB,
		TempFiles:      len(tempFiles),
		ActiveSessions: len(active),
	}
}

func StorageStatsHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(storageStats(cfg, r))
	}
}

func StorageCleanupHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := cfg.GC.RunOnce(r.Context(), "manual")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CleanupResponse{
			Cleaned: res.TempFilesRemoved + res.SessionDirsRemoved,
			Storage: storageStats(cfg, r),
		})
	}
}
