package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	orig := loadDotEnv
	t.Cleanup(func() { loadDotEnv = orig })
	loadDotEnv = func() error { return errors.New("open .env: no such file or directory") }

	t.Setenv("ORBIT_GRPC_ADDR", ":6000")
	t.Setenv("ORBIT_DATABASE_DSN", "postgres://door")
	t.Setenv("ORBIT_ACCESS_TOKEN_TTL", "2h")
	t.Setenv("ORBIT_STATS_TTL", "not-a-duration")
	t.Setenv("ORBIT_KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("ORBIT_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("ORBIT_LOG_LEVEL", "  ")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://door", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL, "invalid duration is ignored")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel, "blank value is ignored")
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV(" , "))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b"))
}
