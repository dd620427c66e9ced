// Package config loads runtime configuration for the Soylem client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-f string   path of the local SQLite database file
//	-o string   directory for preloaded and promoted media files
//	-i int      online status check interval (seconds)
//	-y int      background sync interval (seconds)
//	-t int      HTTP request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "database_path": "soylem.db",
//	  "asset_dir": "assets",
//	  "online_check_interval": "3s",
//	  "sync_interval": "5m",
//	  "http_timeout": "15s"
//	}
//
// Primary API
//
//   - type Config                     — holds all client settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, env, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
package config
