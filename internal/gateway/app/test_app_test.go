package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codelens/internal/gateway/config"
)

const tinyReport = `{"projectName":"tiny","inheritance":{"A":{"type":"CLASS","list":[{"name":"B","type":"extends"}]}}}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port: ":0",
		Env:  "test",
		Analysis: config.AnalysisConfig{
			BackendURL: "http://127.0.0.1:1",
			Timeout:    time.Second,
		},
		Upload: config.UploadConfig{MaxBytes: 1 << 20},
		Store:  config.StoreConfig{Kind: "file", Path: t.TempDir(), Slot: "projectData"},
		Render: config.RenderConfig{CacheSize: 8},
	}
}

func upload(t *testing.T, h http.Handler, body string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBuildServesAndRestores(t *testing.T) {
	cfg := testConfig(t)
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	upload(t, a.Handler(), tinyReport)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graphs/inheritance", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.NoError(t, a.Shutdown(context.Background()))

	// A second gateway on the same directory starts with the saved report.
	b, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = b.Shutdown(context.Background()) }()

	snap, ok := b.Store().Current()
	require.True(t, ok)
	assert.Equal(t, "tiny", snap.Report.ProjectName)
}

func TestReplaceFlushesSceneCache(t *testing.T) {
	cfg := testConfig(t)
	seed, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	upload(t, seed.Handler(), tinyReport)
	require.NoError(t, seed.Shutdown(context.Background()))

	// Restored before the cache watcher subscribes, so no flush is pending.
	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = a.Shutdown(context.Background()) }()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graphs/inheritance", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, a.engine.CachedScenes())

	upload(t, a.Handler(), strings.Replace(tinyReport, "tiny", "tiny2", 1))
	require.Eventually(t, func() bool { return a.engine.CachedScenes() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestCORSPreflight(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { _ = a.Shutdown(context.Background()) }()

	req := httptest.NewRequest(http.MethodOptions, "/api/report", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
