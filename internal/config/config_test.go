package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/estate", cfg.Server.BasePath)
	assert.Equal(t, 256, cfg.Server.MaxViews)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Charts.CacheTTL)
	assert.False(t, cfg.Backend.Mock)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estated.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
backend:
  base_url: "http://models.internal:5000"
  timeout: 3s
  mock: true
  fixtures: fixtures.yaml
charts:
  theme: dark
log:
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/estate", cfg.Server.BasePath)
	assert.Equal(t, "http://models.internal:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.Backend.Mock)
	assert.Equal(t, "fixtures.yaml", cfg.Backend.Fixtures)
	assert.Equal(t, "dark", cfg.Charts.Theme)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estated.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  base_url: http://file:5000\n"), 0o600))
	t.Setenv("ESTATE_BACKEND__BASE_URL", "http://env:5000")
	t.Setenv("ESTATE_LOG__LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "backend.base_url", envKey("ESTATE_BACKEND__BASE_URL"))
	assert.Equal(t, "server.max_views", envKey("ESTATE_SERVER__MAX_VIEWS"))
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Server.Addr = ""
	cfg.Backend.BaseURL = ""
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.addr", "backend.base_url", "log.level", "log.format"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg, _ = Load("")
	cfg.Backend.BaseURL = ""
	cfg.Backend.Mock = true
	assert.NoError(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "view_id", "v1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"view_id":"v1"`)

	_, err = NewLogger(LogConfig{Level: "nope"}, &buf)
	assert.Error(t, err)
}
