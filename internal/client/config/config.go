package config

import "time"

// Config holds runtime settings for the notes CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - DatabaseDSN: path of the local SQLite database file.
//   - QuietPeriod: how long an edited note must stay untouched before the
//     background sync fires.
//   - SyncDisplayWindow: how long the "sync complete" indicator stays visible.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerEndpointAddr  string
	DatabaseDSN         string
	QuietPeriod         time.Duration
	SyncDisplayWindow   time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabaseDSN = "monotes.db"
	c.QuietPeriod = 3 * time.Second
	c.SyncDisplayWindow = 3 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
