package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubStorage struct {
	err error
}

func (s stubStorage) HealthCheck(context.Context) error { return s.err }

func TestReadinessHandlerHealthyWithNoDependencies(t *testing.T) {
	checker := NewChecker(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	ReadinessHandler(checker)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, StatusHealthy, resp.Status)
}

func TestReadinessHandlerUnhealthyStorage(t *testing.T) {
	checker := NewChecker(nil, stubStorage{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	ReadinessHandler(checker)(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, StatusUnhealthy, resp.Status)
	require.Len(t, resp.Components, 1)
	require.Equal(t, "storage", resp.Components[0].Name)
}

func TestLivenessHandlerAlwaysHealthy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	LivenessHandler()(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
