package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_NoFlagLeavesConfigUntouched(t *testing.T) {
	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	before := *cfg

	parseJson(cfg)
	assert.Equal(t, before, *cfg)
}

func TestParseJson_OverlaysValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "server_base_url": "http://10.0.0.5:8080",
  "database_path": "/data/soylem.db",
  "online_check_interval": "7s",
  "sync_interval": "2m"
}`), 0o644))

	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://10.0.0.5:8080", cfg.ServerBaseURL)
	assert.Equal(t, "/data/soylem.db", cfg.DatabasePath)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 2*time.Minute, cfg.SyncInterval)

	// fields absent from the file keep their defaults
	assert.Equal(t, "assets", cfg.AssetDir)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	require.Panics(t, func() { parseJson(cfg) })
}
