// Package config loads runtime configuration for the door scanner.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags -a, -i, -d, -t and -l.
//
// Example file:
//
//	{
//	  "server_endpoint_addr": "10.0.0.5:50051",
//	  "online_check_interval": "5s",
//	  "cache_ttl": "36h",
//	  "synced_retention": "168h",
//	  "db_path": "/var/lib/orbitcheck/door1.db"
//	}
package config
