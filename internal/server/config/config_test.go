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

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("ENDPOINT_ADDR", ":9999")
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("ACCESS_TOKEN_VALIDITY", "30m")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddr)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	// untouched fields keep their defaults
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestParseJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr": ":7070",
		"refresh_token_validity_duration": "48h"
	}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = oldArgs }()

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server", "-a", ":6060", "-k", "flag-secret"}
	defer func() { os.Args = oldArgs }()

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, ":6060", cfg.EndpointAddr)
	assert.Equal(t, "flag-secret", cfg.SecretKey)
}
