package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerEndpointAddr)
	assert.Equal(t, "monotes.db", cfg.DatabaseDSN)
	assert.Equal(t, 3*time.Second, cfg.QuietPeriod)
	assert.Equal(t, 3*time.Second, cfg.SyncDisplayWindow)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_OverlaysOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "https://notes.example.com",
		"quiet_period": "5s"
	}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"client", "-c", path}
	defer func() { os.Args = oldArgs }()

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "https://notes.example.com", cfg.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, cfg.QuietPeriod)
	// untouched fields keep their defaults
	assert.Equal(t, "monotes.db", cfg.DatabaseDSN)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}

func TestParseFlags_OverridesJson(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"client", "-a", "http://10.0.0.5:9090", "-q", "7"}
	defer func() { os.Args = oldArgs }()

	cfg := LoadConfig()

	assert.Equal(t, "http://10.0.0.5:9090", cfg.ServerEndpointAddr)
	assert.Equal(t, 7*time.Second, cfg.QuietPeriod)
}
