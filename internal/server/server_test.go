package server_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/battery-observer/internal/metrics"
	"github.com/ogulcanaydogan/battery-observer/internal/server"
	"github.com/ogulcanaydogan/battery-observer/pkg/engine"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/monitor"
	"github.com/ogulcanaydogan/battery-observer/pkg/power"
	"github.com/ogulcanaydogan/battery-observer/pkg/storage"
	"github.com/ogulcanaydogan/battery-observer/pkg/thresholds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setup struct {
	srv *server.Server
	mon *monitor.Monitor
	th  *thresholds.Store
}

func setupServer(t *testing.T, levels ...int) setup {
	t.Helper()
	metrics.Init(nil)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	th := thresholds.NewStore(store)
	mon := monitor.New(power.Levels(levels...), th, engine.New(), nil, logger, monitor.WithRecorder(store))

	// Seed some data
	for range levels {
		mon.Tick(t.Context())
	}

	return setup{srv: server.NewServer(mon, th, store, logger), mon: mon, th: th}
}

func do(t *testing.T, srv *server.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := setupServer(t)

	w := do(t, s.srv, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_Status(t *testing.T) {
	s := setupServer(t, 50, 15)

	w := do(t, s.srv, "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Enabled)
	assert.Equal(t, model.AlertLow, resp.LastAlert)
	assert.Equal(t, 15, resp.LastReading.Percent)
	assert.Equal(t, int64(2), resp.Ticks)
	assert.Equal(t, model.Thresholds{Low: 20, High: 80}, resp.Thresholds)
}

func TestServer_AlertsSwitch(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		action string
		want   bool
	}{
		{"disable", false},
		{"toggle", true},
		{"toggle", false},
		{"enable", true},
	}
	for _, tt := range tests {
		w := do(t, s.srv, "POST", "/api/v1/alerts/"+tt.action, "")
		require.Equal(t, http.StatusOK, w.Code, tt.action)

		var resp server.AlertsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, tt.want, resp.Enabled, tt.action)
		assert.Equal(t, tt.want, s.mon.Enabled(), tt.action)
	}
}

func TestServer_AlertsUnknownAction(t *testing.T) {
	s := setupServer(t)
	w := do(t, s.srv, "POST", "/api/v1/alerts/snooze", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_GetThresholds(t *testing.T) {
	s := setupServer(t)

	w := do(t, s.srv, "GET", "/api/v1/thresholds", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ThresholdsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 20, resp.Low)
	assert.Equal(t, 80, resp.High)
	assert.Empty(t, resp.Warnings)
}

func TestServer_PutThresholds(t *testing.T) {
	s := setupServer(t)

	w := do(t, s.srv, "PUT", "/api/v1/thresholds", `{"low": 30}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ThresholdsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 30, resp.Low)
	assert.Equal(t, 80, resp.High)

	th, err := s.th.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Low: 30, High: 80}, th)
}

func TestServer_PutThresholdsInvertedWarns(t *testing.T) {
	s := setupServer(t)

	w := do(t, s.srv, "PUT", "/api/v1/thresholds", `{"low": 60, "high": 40}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ThresholdsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 60, resp.Low)
	assert.Equal(t, 40, resp.High)
	assert.NotEmpty(t, resp.Warnings)
}

func TestServer_PutThresholdsBadRequest(t *testing.T) {
	s := setupServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, s.srv, "PUT", "/api/v1/thresholds", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.srv, "PUT", "/api/v1/thresholds", `not json`).Code)
}

func TestServer_History(t *testing.T) {
	s := setupServer(t, 50, 19, 19, 85, 19)

	w := do(t, s.srv, "GET", "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []model.AlertRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	assert.Len(t, records, 3)

	w = do(t, s.srv, "GET", "/api/v1/history?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	assert.Len(t, records, 1)

	w = do(t, s.srv, "GET", "/api/v1/history?kind=high", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, 85, records[0].Level)
}

func TestServer_HistoryEmpty(t *testing.T) {
	s := setupServer(t)

	w := do(t, s.srv, "GET", "/api/v1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestServer_HistoryInvalidQuery(t *testing.T) {
	s := setupServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, s.srv, "GET", "/api/v1/history?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.srv, "GET", "/api/v1/history?kind=medium", "").Code)
}

func TestServer_Metrics(t *testing.T) {
	s := setupServer(t, 50)

	w := do(t, s.srv, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "batobs_ticks_total")
}
