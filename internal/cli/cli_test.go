package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/battery-observer/internal/config"
	"github.com/ogulcanaydogan/battery-observer/internal/server"
	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/storage"
	"github.com/ogulcanaydogan/battery-observer/pkg/thresholds"
)

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "storage:\n  path: " + dbPath + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAPIClient_Do(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(server.AlertsResponse{Enabled: false})
	}))
	defer srv.Close()

	c := newAPIClient(strings.TrimPrefix(srv.URL, "http://"))
	var resp server.AlertsResponse
	err := c.do(context.Background(), "POST", "/api/v1/alerts/disable", nil, &resp)
	require.NoError(t, err)
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/api/v1/alerts/disable", gotPath)
	assert.False(t, resp.Enabled)
}

func TestAPIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown action", http.StatusNotFound)
	}))
	defer srv.Close()

	err := newAPIClient(srv.URL).do(context.Background(), "POST", "/api/v1/alerts/snooze", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "unknown action")
}

func TestAPIClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	err := newAPIClient(addr).do(context.Background(), "GET", "/api/v1/status", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon not reachable")
}

func TestThresholdsSetCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "batobs.db")
	cfgPath := writeConfig(t, dbPath)

	_, err := execute(t, "--config", cfgPath, "thresholds", "set", "--low", "25", "--high", "90")
	require.NoError(t, err)

	store, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	th, err := thresholds.NewStore(store).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Low: 25, High: 90}, th)
}

func TestConfigInitCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "config.yaml")

	stdout, err := execute(t, "config", "init", "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)

	cfg, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Schedule, cfg.Schedule)
	assert.Equal(t, "reference", cfg.Engine.Mode)
	assert.Equal(t, "127.0.0.1:7420", cfg.Server.Listen)
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "batobs version dev\n", stdout)
}

func TestLevelFormat(t *testing.T) {
	th := model.Thresholds{Low: 20, High: 80}
	for _, level := range []int{5, 20, 50, 80, 95} {
		assert.Contains(t, levelFormat(level, th), "%")
	}
}

func TestConfigShowCommandRedactsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "alerts:\n  webhook:\n    url: https://example.com/hook\n    secret: s3cret\n  mqtt:\n    password: hunter2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	stdout, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "s3cret")
	assert.NotContains(t, stdout, "hunter2")
	assert.Contains(t, stdout, "<redacted>")
	assert.Contains(t, stdout, "https://example.com/hook")
}
