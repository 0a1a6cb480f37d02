package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/orbitcheck/internal/flagx"
	"github.com/dmitrijs2005/orbitcheck/internal/timex"
)

// JsonConfig is the file form of Config. Durations accept "1s" style strings
// or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	ExportURLValidity           timex.Duration `json:"export_url_validity"`
	KafkaBrokers                []string       `json:"kafka_brokers"`
	KafkaTopic                  string         `json:"kafka_topic"`
	RedisURL                    string         `json:"redis_url"`
	StatsCacheTTL               timex.Duration `json:"stats_cache_ttl"`
	CORSOrigins                 []string       `json:"cors_origins"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays config with the file given by -c/-config. Keys missing
// from the file keep their current value. Read and decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.KafkaTopic, c.KafkaTopic)
	set(&config.RedisURL, c.RedisURL)
	set(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ExportURLValidity.Duration > 0 {
		config.ExportURLValidity = c.ExportURLValidity.Duration
	}
	if c.StatsCacheTTL.Duration > 0 {
		config.StatsCacheTTL = c.StatsCacheTTL.Duration
	}
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
}
