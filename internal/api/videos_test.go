package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
)

func TestListVideosReturnsCreatedVideos(t *testing.T) {
	cfg, _ := newTestConfig(t)
	createSessionAndVideo(t, cfg, 10)
	createSessionAndVideo(t, cfg, 20)

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	w := httptest.NewRecorder()
	ListVideosHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var videos []*statestore.Video
	require.NoError(t, json.NewDecoder(w.Body).Decode(&videos))
	require.Len(t, videos, 2)
}

func TestGetVideoNotFound(t *testing.T) {
	cfg, _ := newTestConfig(t)

	req := httptest.NewRequest(http.MethodGet, "/videos/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	GetVideoHandler(cfg)(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVideoFound(t *testing.T) {
	cfg, _ := newTestConfig(t)
	session := createSessionAndVideo(t, cfg, 10)

	req := httptest.NewRequest(http.MethodGet, "/videos/"+session.VideoID, nil)
	req.SetPathValue("id", session.VideoID)
	w := httptest.NewRecorder()
	GetVideoHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var video statestore.Video
	require.NoError(t, json.NewDecoder(w.Body).Decode(&video))
	require.Equal(t, session.VideoID, video.ID)
	require.Equal(t, statestore.VideoUploading, video.Status)
}

func TestDeleteVideoRemovesFromStore(t *testing.T) {
	cfg, _ := newTestConfig(t)
	session := createSessionAndVideo(t, cfg, 10)

	req := httptest.NewRequest(http.MethodDelete, "/videos/"+session.VideoID, nil)
	req.SetPathValue("id", session.VideoID)
	w := httptest.NewRecorder()
	DeleteVideoHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DeleteResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.True(t, resp.Success)

	_, ok := cfg.Store.GetVideo(req.Context(), session.VideoID)
	require.False(t, ok)
}

func TestQueueStatsHandlerReflectsStore(t *testing.T) {
	cfg, q := newTestConfig(t)
	createSessionAndVideo(t, cfg, 10)

	req := httptest.NewRequest(http.MethodGet, "/queue/stats", nil)
	w := httptest.NewRecorder()
	QueueStatsHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats QueueStatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	require.GreaterOrEqual(t, stats.Waiting, 0)
	require.Empty(t, q.submitted)
}

func TestStorageStatsHandler(t *testing.T) {
	cfg, _ := newTestConfig(t)

	req := httptest.NewRequest(http.MethodGet, "/storage/stats", nil)
	w := httptest.NewRecorder()
	StorageStatsHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats StorageStatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	require.GreaterOrEqual(t, stats.FreeMB, float64(0))
}

func TestStorageCleanupHandler(t *testing.T) {
	cfg, _ := newTestConfig(t)

	req := httptest.NewRequest(http.MethodPost, "/storage/cleanup", nil)
	w := httptest.NewRecorder()
	StorageCleanupHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CleanupResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.GreaterOrEqual(t, resp.Cleaned, 0)
}
