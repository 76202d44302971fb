package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/abdul-hamid-achik/videopipeline/internal/apperror"
)

const (
	contentTypeHLSPlaylist = "application/vnd.apple.mpegurl"
	contentTypeHLSSegment  = "video/mp2t"
)

func withCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func StreamPlaylistHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := r.PathValue("id")
		resolution := r.PathValue("res")

		path := cfg.Disk.PlaylistPath(videoID, resolution)
		if _, err := os.Stat(path); err != nil {
			apperror.WriteJSON(w, r, apperror.ErrNotFound)
			return
		}

		withCORS(w)
		w.Header().Set("Content-Type", contentTypeHLSPlaylist)
		http.ServeFile(w, r, path)
	}
}

func StreamSegmentHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := r.PathValue("id")
		resolution := r.PathValue("res")
		segment := r.PathValue("segment")

		path := cfg.Disk.SegmentPath(videoID, resolution, segment)
		info, err := os.Stat(path)
		if err != nil {
			apperror.WriteJSON(w, r, apperror.ErrNotFound)
			return
		}

		withCORS(w)
		w.Header().Set("Content-Type", contentTypeHLSSegment)
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
		http.ServeFile(w, r, path)
	}
}
