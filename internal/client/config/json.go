package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/monotes/monotes/internal/flagx"
	"github.com/monotes/monotes/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s" or
// as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	QuietPeriod         timex.Duration `json:"quiet_period"`
	SyncDisplayWindow   timex.Duration `json:"sync_display_window"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags; when neither is set nothing is loaded.
// Fields absent from the JSON keep their current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.QuietPeriod.Duration != 0 {
		cfg.QuietPeriod = time.Duration(jc.QuietPeriod.Duration)
	}
	if jc.SyncDisplayWindow.Duration != 0 {
		cfg.SyncDisplayWindow = time.Duration(jc.SyncDisplayWindow.Duration)
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
