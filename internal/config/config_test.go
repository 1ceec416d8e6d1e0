package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(home, ".aut", "tracker.db"), cfg.Storage.Path)
	assert.True(t, cfg.Tracker.RequireDescription)
	assert.Equal(t, 14, cfg.Tracker.AverageWindow)
	assert.InDelta(t, 80.0, cfg.Tracker.AlertThresholdPct, 0.001)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Listen)
	assert.Equal(t, "10s", cfg.Server.ReadTimeout)
	assert.Equal(t, "30s", cfg.Server.WriteTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "#ai-usage", cfg.Alerts.Slack.Channel)
	assert.False(t, cfg.Alerts.Webhook.Enabled)
	assert.False(t, cfg.Alerts.Desktop.Enabled)
	assert.True(t, cfg.Server.Watch)

	loc, err := cfg.Tracker.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := []byte(`
storage:
  driver: file
  path: /tmp/usage.json
tracker:
  timezone: Europe/Istanbul
  require_description: false
  average_window: 7
server:
  listen: ":9090"
alerts:
  webhook:
    enabled: true
    url: http://example.com/hook
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/usage.json", cfg.Storage.Path)
	assert.False(t, cfg.Tracker.RequireDescription)
	assert.Equal(t, 7, cfg.Tracker.AverageWindow)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.True(t, cfg.Alerts.Webhook.Enabled)
	assert.Equal(t, "http://example.com/hook", cfg.Alerts.Webhook.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	loc, err := cfg.Tracker.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Istanbul", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AUT_LOGGING_LEVEL", "error")
	t.Setenv("AUT_SERVER_LISTEN", ":7070")
	t.Setenv("AUT_STORAGE_DRIVER", "memory")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644))

	_, err := config.Load(cfgPath)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"driver":   "storage:\n  driver: postgres\n",
		"window":   "tracker:\n  average_window: 0\n",
		"timezone": "tracker:\n  timezone: Mars/Olympus\n",
	} {
		cfgPath := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

		_, err := config.Load(cfgPath)
		assert.Error(t, err, name)
	}
}
