package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/flagx"
	"github.com/dmitrijs2005/orbitcheck/internal/timex"
)

// JsonConfig is the file form of Config. Durations accept "3s" style strings
// or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	CacheTTL            timex.Duration `json:"cache_ttl"`
	SyncedRetention     timex.Duration `json:"synced_retention"`
	SyncTimeout         timex.Duration `json:"sync_timeout"`
	DBPath              string         `json:"db_path"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the file given by -c/-config. Keys missing from
// the file keep their current value. Read and decode errors panic.
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

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.CacheTTL, jc.CacheTTL)
	setDuration(&cfg.SyncedRetention, jc.SyncedRetention)
	setDuration(&cfg.SyncTimeout, jc.SyncTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
