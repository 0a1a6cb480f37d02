package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string     server address and port
//	-i int        online check interval in seconds
//	-d string     path of the local SQLite database
//	-t duration   roster cache TTL, e.g. 36h
//	-l string     log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.DurationVar(&cfg.CacheTTL, "t", cfg.CacheTTL, "roster cache TTL")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
