package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/apperror"
	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/abdul-hamid-achik/videopipeline/internal/metrics"
	"github.com/abdul-hamid-achik/videopipeline/internal/queue"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
	"github.com/google/uuid"
)

// lowSpaceThreshold mirrors gc.LowSpaceBytes; checked before every chunk
// write so a near-full disk fails the upload instead of the assembly step.
const lowSpaceThreshold = 100 * 1024 * 1024

func CreateSessionHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "invalid_request", "Invalid request body", http.StatusBadRequest))
			return
		}
		if req.Filename == "" || req.TotalSize <= 0 {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(nil, "invalid_request", "filename and totalSize are required", http.StatusBadRequest))
			return
		}
		if cfg.MaxUploadSize > 0 && req.TotalSize > cfg.MaxUploadSize {
			apperror.WriteJSON(w, r, apperror.ErrFileTooLarge)
			return
		}

		videoID := uuid.NewString()
		sessionID := uuid.NewString()
		totalChunks := int((req.TotalSize + ChunkSize - 1) / ChunkSize)
		now := time.Now()

		video := &statestore.Video{
			ID:          videoID,
			Filename:    req.Filename,
			Size:        req.TotalSize,
			MimeType:    req.MimeType,
			Status:      statestore.VideoUploading,
			Transcoding: make(map[statestore.Resolution]float64),
			HLSUrls:     make(map[statestore.Resolution]string),
			CreatedAt:   now,
		}
		if err := cfg.Store.CreateVideo(r.Context(), video); err != nil {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
			return
		}

		session := &statestore.UploadSession{
			ID:             sessionID,
			VideoID:        videoID,
			Filename:       req.Filename,
			TotalSize:      req.TotalSize,
			ChunkSize:      ChunkSize,
			TotalChunks:    totalChunks,
			ReceivedChunks: make(map[int]bool),
			Status:         statestore.SessionActive,
			CreatedAt:      now,
			ExpiresAt:      now.Add(24 * time.Hour),
		}
		if err := cfg.Store.CreateSession(r.Context(), session); err != nil {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
			return
		}

		metrics.UploadSessionsTotal.WithLabelValues("created").Inc()
		logger.FromContext(r.Context()).Info("upload session created", "session_id", sessionID, "video_id", videoID, "total_chunks", totalChunks)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(session)
	}
}

func GetSessionHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		session, ok := cfg.Store.GetSession(r.Context(), id)
		if !ok {
			apperror.WriteJSON(w, r, apperror.ErrSessionNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(session)
	}
}

func UploadChunkHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if free, err := cfg.Disk.FreeBytes(); err == nil && free < lowSpaceThreshold {
			cfg.GC.MaybeRunIfLowSpace(r.Context())
			if free, err := cfg.Disk.FreeBytes(); err == nil && free < lowSpaceThreshold {
				metrics.ChunksReceivedTotal.WithLabelValues("storage_full").Inc()
				apperror.WriteJSON(w, r, apperror.ErrStorageFull)
				return
			}
		}

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "invalid_request", "Invalid multipart body", http.StatusBadRequest))
			return
		}

		sessionID := r.FormValue("sessionId")
		chunkIndex, err := strconv.Atoi(r.FormValue("chunkIndex"))
		if err != nil {
			apperror.WriteJSON(w, r, apperror.ErrInvalidChunkIndex)
			return
		}

		session, ok := cfg.Store.GetSession(r.Context(), sessionID)
		if !ok {
			apperror.WriteJSON(w, r, apperror.ErrSessionNotFound)
			return
		}

		if chunkIndex < 0 || chunkIndex >= session.TotalChunks {
			apperror.WriteJSON(w, r, apperror.ErrInvalidChunkIndex)
			return
		}

		file, _, err := r.FormFile("chunk")
		if err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "missing_chunk", "Missing chunk file part", http.StatusBadRequest))
			return
		}
		defer func() { _ = file.Close() }()

		tempPath := cfg.Disk.NewTempPath()
		tempFile, err := os.Create(tempPath)
		if err != nil {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
			return
		}

		written, err := io.Copy(tempFile, file)
		_ = tempFile.Close()
		if err != nil {
			_ = os.Remove(tempPath)
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
			return
		}
		if written == 0 {
			_ = os.Remove(tempPath)
			apperror.WriteJSON(w, r, apperror.ErrEmptyChunk)
			return
		}

		if _, err := cfg.Disk.PromoteChunk(tempPath, sessionID, chunkIndex); err != nil {
			_ = os.Remove(tempPath)
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrInternal))
			return
		}

		updated, ok := cfg.Store.MarkChunkReceived(r.Context(), sessionID, chunkIndex)
		if !ok {
			apperror.WriteJSON(w, r, apperror.ErrSessionNotFound)
			return
		}

		uploaded := len(updated.ReceivedChunks)
		progress := float64(uploaded) / float64(updated.TotalChunks) * 100

		metrics.ChunksReceivedTotal.WithLabelValues("success").Inc()
		log.Debug("chunk received", "session_id", sessionID, "chunk_index", chunkIndex, "uploaded", uploaded, "total", updated.TotalChunks)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChunkUploadResponse{
			Success:        true,
			UploadedChunks: uploaded,
			TotalChunks:    updated.TotalChunks,
			Progress:       progress,
		})
	}
}

func CompleteUploadHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "invalid_request", "Invalid request body", http.StatusBadRequest))
			return
		}

		session, ok := cfg.Store.GetSession(r.Context(), req.SessionID)
		if !ok {
			apperror.WriteJSON(w, r, apperror.ErrSessionNotFound)
			return
		}

		if session.Status == statestore.SessionCompleted {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(CompleteResponse{Success: true, VideoID: session.VideoID})
			return
		}
		if session.Status != statestore.SessionActive {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(nil, "session_not_active", "Upload session is not active", http.StatusConflict))
			return
		}

		if len(session.ReceivedChunks) != session.TotalChunks {
			missing := missingIndices(session, MaxMissingChunksReported)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(IncompleteUploadResponse{Error: apperror.ErrIncompleteUpload.Code, MissingChunks: missing})
			return
		}

		ext := filepath.Ext(session.Filename)
		outputPath := cfg.Disk.UploadPath(session.VideoID, ext)

		start := time.Now()
		if err := assembleChunks(cfg, session, outputPath); err != nil {
			_ = os.Remove(outputPath)
			log.Error("assembly failed", "session_id", session.ID, "error", err)
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "assembly_failed", "Failed to assemble uploaded file", http.StatusInternalServerError))
			return
		}
		metrics.AssemblyDuration.Observe(time.Since(start).Seconds())

		if err := cfg.Disk.RemoveSessionDir(session.ID); err != nil {
			log.Warn("failed to remove session chunk dir after assembly", "session_id", session.ID, "error", err)
		}

		cfg.Store.UpdateSession(r.Context(), session.ID, func(s *statestore.UploadSession) {
			s.Status = statestore.SessionCompleted
		})

		cfg.Store.UpdateVideo(r.Context(), session.VideoID, func(v *statestore.Video) {
			v.Status = statestore.VideoUploadCompleted
			v.UploadPct = 100
		})

		cfg.Bus.Publish(r.Context(), eventbus.Event{
			Type:      eventbus.UploadCompleted,
			VideoID:   session.VideoID,
			Timestamp: time.Now(),
		})

		jobs := make([]*queue.Job, 0, len(statestore.Resolutions))
		for _, res := range statestore.Resolutions {
			jobID := uuid.NewString()
			outDir := cfg.Disk.TranscodedDir(session.VideoID, string(res))
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				log.Error("failed to create resolution output dir", "resolution", res, "error", err)
				continue
			}
			job := &statestore.TranscodingJob{
				ID:         jobID,
				VideoID:    session.VideoID,
				Resolution: res,
				Status:     statestore.JobPending,
				InputPath:  outputPath,
				CreatedAt:  time.Now(),
			}
			if err := cfg.Store.CreateJob(r.Context(), job); err != nil {
				log.Error("failed to create transcoding job", "resolution", res, "error", err)
				continue
			}
			jobs = append(jobs, &queue.Job{JobID: jobID, VideoID: session.VideoID, Resolution: res, InputPath: outputPath, OutputDir: outDir})
		}

		cfg.Store.UpdateVideo(r.Context(), session.VideoID, func(v *statestore.Video) {
			v.Status = statestore.VideoQueued
			v.Resolutions = append([]statestore.Resolution(nil), statestore.Resolutions...)
			v.Transcoding = map[statestore.Resolution]float64{
				statestore.ResolutionLow:    0,
				statestore.ResolutionMedium: 0,
				statestore.ResolutionHigh:   0,
			}
		})

		for _, job := range jobs {
			if err := cfg.Queue.Submit(r.Context(), job); err != nil {
				log.Error("failed to submit job to queue", "resolution", job.Resolution, "error", err)
				continue
			}
			metrics.RecordJobEnqueued(string(job.Resolution))
		}

		log.Info("upload completed, transcoding jobs submitted", "video_id", session.VideoID, "job_count", len(jobs))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CompleteResponse{Success: true, VideoID: session.VideoID})
	}
}

// missingIndices reports the gap in [0,totalChunks), capped for readability.
func missingIndices(session *statestore.UploadSession, cap int) []int {
	var missing []int
	for i := 0; i < session.TotalChunks; i++ {
		if !session.ReceivedChunks[i] {
			missing = append(missing, i)
			if len(missing) >= cap {
				break
			}
		}
	}
	sort.Ints(missing)
	return missing
}

// assembleChunks streams chunks 0..totalChunks-1 into outputPath in order.
// Sequential io.Copy calls provide the required backpressure: each copy
// blocks on the destination file's write buffer before the next chunk is
// read, so memory use never exceeds one chunk at a time.
func assembleChunks(cfg *Config, session *statestore.UploadSession, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	for i := 0; i < session.TotalChunks; i++ {
		chunkPath := cfg.Disk.ChunkPath(session.ID, i)
		in, err := os.Open(chunkPath)
		if err != nil {
			return fmt.Errorf("open chunk %d: %w", i, err)
		}
		_, err = io.Copy(out, in)
		_ = in.Close()
		if err != nil {
			return fmt.Errorf("copy chunk %d: %w", i, err)
		}
	}
	return nil
}
