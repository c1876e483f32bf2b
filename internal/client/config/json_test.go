package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = append([]string{"orbit"}, args...)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orbit.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJson_OverlaysValues(t *testing.T) {
	path := writeConfigFile(t, `{
		"server_base_url": "https://orbit.example.com",
		"request_timeout": "5s",
		"database_path": "/tmp/orbit.db"
	}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://orbit.example.com", cfg.ServerBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/orbit.db", cfg.DatabasePath)
}

func TestParseJson_MissingFieldsKeepDefaults(t *testing.T) {
	path := writeConfigFile(t, `{"server_base_url": "https://orbit.example.com"}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://orbit.example.com", cfg.ServerBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "orbit.db", cfg.DatabasePath)
}

func TestParseJson_NoFlagLoadsNothing(t *testing.T) {
	withArgs(t)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://localhost:8000", cfg.ServerBaseURL)
}

func TestParseJson_FlagsStillWin(t *testing.T) {
	path := writeConfigFile(t, `{"server_base_url": "https://from-json.example.com"}`)
	withArgs(t, "-c", path, "-a", "https://from-flag.example.com")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)

	assert.Equal(t, "https://from-flag.example.com", cfg.ServerBaseURL)
}
