package vtctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload/session", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "video.mp4", body["filename"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sessionResponse{SessionID: "sess-1", TotalChunks: 3})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.CreateSession(t.Context(), "video.mp4", 6*1024*1024, "video/mp4")
	require.NoError(t, err)
	require.Equal(t, "sess-1", resp.SessionID)
	require.Equal(t, 3, resp.TotalChunks)
}

func TestQueueStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/queue/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(QueueStats{Waiting: 2, Active: 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	stats, err := c.QueueStats(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Waiting)
	require.Equal(t, 1, stats.Active)
}

func TestDoJSONPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetVideo(t.Context(), "missing")
	require.Error(t, err)
}
