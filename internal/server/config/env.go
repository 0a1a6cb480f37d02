package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a test seam for godotenv.Load.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv loads .env when present and overlays ORBIT_* variables. Invalid
// durations are ignored.
func parseEnv(cfg *Config) {
	_ = loadDotEnv()

	envString(&cfg.EndpointAddrGRPC, "ORBIT_GRPC_ADDR")
	envString(&cfg.EndpointAddrHTTP, "ORBIT_HTTP_ADDR")
	envString(&cfg.DatabaseDSN, "ORBIT_DATABASE_DSN")
	envString(&cfg.SecretKey, "ORBIT_SECRET_KEY")
	envDuration(&cfg.AccessTokenValidityDuration, "ORBIT_ACCESS_TOKEN_TTL")
	envString(&cfg.S3RootUser, "ORBIT_S3_USER")
	envString(&cfg.S3RootPassword, "ORBIT_S3_PASSWORD")
	envString(&cfg.S3Bucket, "ORBIT_S3_BUCKET")
	envString(&cfg.S3Region, "ORBIT_S3_REGION")
	envString(&cfg.S3BaseEndpoint, "ORBIT_S3_ENDPOINT")
	envDuration(&cfg.ExportURLValidity, "ORBIT_EXPORT_URL_TTL")
	envCSV(&cfg.KafkaBrokers, "ORBIT_KAFKA_BROKERS")
	envString(&cfg.KafkaTopic, "ORBIT_KAFKA_TOPIC")
	envString(&cfg.RedisURL, "ORBIT_REDIS_URL")
	envDuration(&cfg.StatsCacheTTL, "ORBIT_STATS_TTL")
	envCSV(&cfg.CORSOrigins, "ORBIT_CORS_ORIGINS")
	envString(&cfg.LogLevel, "ORBIT_LOG_LEVEL")
}

func envString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}

func envCSV(dst *[]string, name string) {
	if parts := splitCSV(os.Getenv(name)); len(parts) > 0 {
		*dst = parts
	}
}

func splitCSV(raw string) []string {
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
