package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpointList(t *testing.T) {
	endpoints := ParseEndpointList(" local, http://localhost:5001/ ,,http://127.0.0.1:5001", time.Second)

	require.Len(t, endpoints, 3)
	assert.True(t, endpoints[0].IsLocal())
	assert.Equal(t, "http://localhost:5001", endpoints[1].URL)
	assert.Equal(t, "http://127.0.0.1:5001", endpoints[2].URL)
	for _, ep := range endpoints {
		assert.Equal(t, time.Second, ep.Timeout)
	}
}

func TestLoadEndpointsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	content := `endpoints:
  - name: primary
    url: http://localhost:5001/
    timeout: 750ms
  - url: http://127.0.0.1:5001
  - name: in-process
    url: local
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	endpoints, err := LoadEndpointsFile(path, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, endpoints, 3)

	assert.Equal(t, DocumentEndpoint{Name: "primary", URL: "http://localhost:5001", Timeout: 750 * time.Millisecond}, endpoints[0])
	assert.Equal(t, "http://127.0.0.1:5001", endpoints[1].Name)
	assert.Equal(t, 2*time.Second, endpoints[1].Timeout)
	assert.True(t, endpoints[2].IsLocal())
}

func TestLoadEndpointsFileRejectsMissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  - name: broken\n"), 0o644))

	_, err := LoadEndpointsFile(path, time.Second)
	assert.Error(t, err)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SESSION_DOCUMENT_ENDPOINTS", "http://a:1,http://b:2")
	t.Setenv("SESSION_FETCH_TIMEOUT", "1500ms")
	t.Setenv("SESSION_POLL_INTERVAL", "3s")
	t.Setenv("SESSION_REMINDER_EXCERPT", "120")
	t.Setenv("SIGNAL_BACKEND", "file")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("SESSION_ENDPOINTS_FILE", "")

	cfg := Load()

	require.Len(t, cfg.Session.DocumentEndpoints, 2)
	assert.Equal(t, "http://a:1", cfg.Session.DocumentEndpoints[0].URL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.DocumentEndpoints[0].Timeout)
	assert.Equal(t, 3*time.Second, cfg.Session.PollInterval)
	assert.Equal(t, 120, cfg.Session.ReminderExcerpt)
	assert.Equal(t, "file", cfg.Signal.Backend)
	assert.True(t, cfg.App.OtelEnabled)
}

func TestDurationFallbackOnGarbage(t *testing.T) {
	t.Setenv("SESSION_POLL_MAX_BACKOFF", "soon")
	assert.Equal(t, 30*time.Second, getEnvAsDuration("SESSION_POLL_MAX_BACKOFF", 30*time.Second))
}
