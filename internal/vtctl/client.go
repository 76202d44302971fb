// Package vtctl implements the vtctl command-line client: chunked upload,
// status polling, and queue introspection against a running server.
package vtctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultChunkSize = 2 * 1024 * 1024

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type sessionResponse struct {
	SessionID   string `json:"id"`
	TotalChunks int    `json:"totalChunks"`
}

type chunkResponse struct {
	Success        bool    `json:"success"`
	UploadedChunks int     `json:"uploadedChunks"`
	TotalChunks    int     `json:"totalChunks"`
	Progress       float64 `json:"progress"`
}

type completeResponse struct {
	Success bool   `json:"success"`
	VideoID string `json:"videoId"`
}

type VideoStatus struct {
	ID          string             `json:"id"`
	Filename    string             `json:"filename"`
	Status      string             `json:"status"`
	UploadPct   float64            `json:"uploadPct"`
	Transcoding map[string]float64 `json:"transcoding"`
	HLSUrls     map[string]string  `json:"hlsUrls"`
	Error       string             `json:"error,omitempty"`
}

type QueueStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("server returned %d: %v", resp.StatusCode, errBody)
	}
	if respBody != nil {
		return json.NewDecoder(resp.Body).Decode(respBody)
	}
	return nil
}

// CreateSession opens a new upload session for a file of the given size.
func (c *Client) CreateSession(ctx context.Context, filename string, totalSize int64, mimeType string) (*sessionResponse, error) {
	req := map[string]any{"filename": filename, "totalSize": totalSize, "mimeType": mimeType}
	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/session", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadChunk posts one chunk's bytes for the given session and index.
func (c *Client) UploadChunk(ctx context.Context, sessionID string, index int, chunk []byte) (*chunkResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("sessionId", sessionID)
	_ = mw.WriteField("chunkIndex", strconv.Itoa(index))
	part, err := mw.CreateFormFile("chunk", "chunk")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(chunk); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/chunk", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("server returned %d: %v", resp.StatusCode, errBody)
	}

	var out chunkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete signals that every chunk has been uploaded and assembly/
// transcode fan-out should begin.
func (c *Client) Complete(ctx context.Context, sessionID string) (*completeResponse, error) {
	req := map[string]any{"sessionId": sessionID}
	var resp completeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/upload/complete", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetVideo(ctx context.Context, videoID string) (*VideoStatus, error) {
	var resp VideoStatus
	if err := c.doJSON(ctx, http.MethodGet, "/videos/"+videoID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) QueueStats(ctx context.Context) (*QueueStats, error) {
	var resp QueueStats
	if err := c.doJSON(ctx, http.MethodGet, "/queue/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
