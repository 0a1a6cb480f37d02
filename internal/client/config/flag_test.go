package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "address and interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "10"},
			expected: &Config{ServerEndpointAddr: "127.0.0.1:9090", OnlineCheckInterval: 10 * time.Second}},
		{name: "db, ttl and level", args: []string{"cmd", "-d", "/tmp/door.db", "-t", "12h", "-l", "debug"},
			expected: &Config{DBPath: "/tmp/door.db", CacheTTL: 12 * time.Hour, LogLevel: "debug"}},
		{name: "unrelated flags ignored", args: []string{"cmd", "-x", "1", "-a", "h:1"},
			expected: &Config{ServerEndpointAddr: "h:1"}},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
		{name: "incorrect ttl", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
