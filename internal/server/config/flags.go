package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-h string   HTTP bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-k string   comma-separated Kafka brokers
//	-r string   Redis URL
//	-l string   log level
//	-add-operator name:password
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-h", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-k", "-r", "-l", "-add-operator"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	kafkaBrokers := fs.String("k", "", "Kafka brokers, comma separated")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "Redis URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.AddOperator, "add-operator", config.AddOperator, "seed operator as name:password and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	if parts := splitCSV(*kafkaBrokers); len(parts) > 0 {
		config.KafkaBrokers = parts
	}
}
