package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-a", "http://10.0.0.5:8080", "-f", "/tmp/s.db", "-o", "/tmp/assets", "-i", "10", "-y", "60", "-t", "5"},
			expectPanic: false,
			expected: &Config{
				ServerBaseURL:       "http://10.0.0.5:8080",
				DatabasePath:        "/tmp/s.db",
				AssetDir:            "/tmp/assets",
				OnlineCheckInterval: 10 * time.Second,
				SyncInterval:        60 * time.Second,
				HTTPTimeout:         5 * time.Second,
			}},
		{name: "Test2 incorrect check interval",
			args:        []string{"cmd", "-i", "abc"},
			expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
