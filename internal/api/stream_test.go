package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamPlaylistHandlerNotFound(t *testing.T) {
	cfg, _ := newTestConfig(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/v1/low/playlist.m3u8", nil)
	req.SetPathValue("id", "v1")
	req.SetPathValue("res", "low")
	w := httptest.NewRecorder()
	StreamPlaylistHandler(cfg)(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamPlaylistHandlerServesExistingFile(t *testing.T) {
	cfg, _ := newTestConfig(t)

	path := cfg.Disk.PlaylistPath("v1", "low")
	require.NoError(t, os.MkdirAll(cfg.Disk.TranscodedDir("v1", "low"), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#EXTM3U\n"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/stream/v1/low/playlist.m3u8", nil)
	req.SetPathValue("id", "v1")
	req.SetPathValue("res", "low")
	w := httptest.NewRecorder()
	StreamPlaylistHandler(cfg)(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, contentTypeHLSPlaylist, w.Header().Get("Content-Type"))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamSegmentHandlerNotFound(t *testing.T) {
	cfg, _ := newTestConfig(t)

	req := httptest.NewRequest(http.MethodGet, "/stream/v1/low/seg0.ts", nil)
	req.SetPathValue("id", "v1")
	req.SetPathValue("res", "low")
	req.SetPathValue("segment", "seg0.ts")
	w := httptest.NewRecorder()
	StreamSegmentHandler(cfg)(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
