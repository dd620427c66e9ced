package config

import "time"

// Config holds runtime settings for the Soylem client.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API (no trailing slash).
//   - DatabasePath: path of the local SQLite database file.
//   - AssetDir: directory where preloaded and promoted media files live.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SyncInterval: how often a background catalog sync runs.
//   - HTTPTimeout: per-request timeout of the API client.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	AssetDir            string
	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	HTTPTimeout         time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "soylem.db"
	c.AssetDir = "assets"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 5 * time.Minute
	c.HTTPTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a JSON file (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
