package config

import (
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
)

// Config holds runtime settings of the door scanner.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CacheTTL            time.Duration
	SyncedRetention     time.Duration
	SyncTimeout         time.Duration
	DBPath              string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheTTL = common.DefaultCacheTTL
	c.SyncedRetention = common.DefaultSyncedRetention
	c.SyncTimeout = 30 * time.Second
	c.DBPath = "orbitcheck.db"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
