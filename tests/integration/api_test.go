package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/videopipeline/internal/api"
	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/gc"
	"github.com/abdul-hamid-achik/videopipeline/internal/queue"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
	"github.com/abdul-hamid-achik/videopipeline/internal/storage"
)

// These tests never start the queue consumer loop, so jobs sit queued
// without a handler attached; the ffmpeg/ffprobe binaries this service
// shells out to aren't available in CI, so this exercises the HTTP
// surface up to (not through) actual transcoding.
func TestUploadLifecycleEndToEnd(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	store := statestore.NewInMemory()
	bus := eventbus.New(nil)
	q := queue.NewLocalQueue()
	collector := gc.New(disk, store)

	cfg := &api.Config{Store: store, Bus: bus, Disk: disk, Queue: q, GC: collector}
	router := api.NewRouter(cfg)
	server := httptest.NewServer(router)
	defer server.Close()

	payload := []byte("hello world, this is a tiny fake video payload")

	sessionBody, err := json.Marshal(map[string]any{
		"filename":  "clip.mp4",
		"totalSize": len(payload),
		"mimeType":  "video/mp4",
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/upload/session", "application/json", bytes.NewReader(sessionBody))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session struct {
		ID          string `json:"id"`
		VideoID     string `json:"videoId"`
		TotalChunks int    `json:"totalChunks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	require.Equal(t, 1, session.TotalChunks)

	var chunkBuf bytes.Buffer
	mw := multipart.NewWriter(&chunkBuf)
	require.NoError(t, mw.WriteField("sessionId", session.ID))
	require.NoError(t, mw.WriteField("chunkIndex", "0"))
	part, err := mw.CreateFormFile("chunk", "chunk")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	chunkReq, err := http.NewRequest(http.MethodPost, server.URL+"/upload/chunk", &chunkBuf)
	require.NoError(t, err)
	chunkReq.Header.Set("Content-Type", mw.FormDataContentType())
	chunkResp, err := http.DefaultClient.Do(chunkReq)
	require.NoError(t, err)
	defer func() { _ = chunkResp.Body.Close() }()
	require.Equal(t, http.StatusOK, chunkResp.StatusCode)

	completeBody, err := json.Marshal(map[string]string{"sessionId": session.ID})
	require.NoError(t, err)
	completeResp, err := http.Post(server.URL+"/upload/complete", "application/json", bytes.NewReader(completeBody))
	require.NoError(t, err)
	defer func() { _ = completeResp.Body.Close() }()
	require.Equal(t, http.StatusOK, completeResp.StatusCode)

	videoResp, err := http.Get(server.URL + "/videos/" + session.VideoID)
	require.NoError(t, err)
	defer func() { _ = videoResp.Body.Close() }()
	require.Equal(t, http.StatusOK, videoResp.StatusCode)

	var video statestore.Video
	require.NoError(t, json.NewDecoder(videoResp.Body).Decode(&video))
	require.Equal(t, statestore.VideoQueued, video.Status)
	require.Len(t, video.Resolutions, 3)
}

func TestQueueStatsAndStorageStatsEndpoints(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	store := statestore.NewInMemory()
	bus := eventbus.New(nil)
	q := queue.NewLocalQueue()
	collector := gc.New(disk, store)

	cfg := &api.Config{Store: store, Bus: bus, Disk: disk, Queue: q, GC: collector}
	router := api.NewRouter(cfg)
	server := httptest.NewServer(router)
	defer server.Close()

	for _, path := range []string{"/queue/stats", "/storage/stats"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err, path)
		require.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("%s: unexpected status", path))
		_ = resp.Body.Close()
	}
}
