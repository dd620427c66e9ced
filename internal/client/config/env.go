package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from environment variables. A .env
// file in the working directory is loaded first when present; real
// environment variables keep precedence over it.
//
// Supported variables:
//
//	SERVER_BASE_URL        base URL of the backend HTTP API
//	DATABASE_PATH          path of the local SQLite database file
//	ASSET_DIR              directory for preloaded and promoted media
//	ONLINE_CHECK_INTERVAL  probe interval, seconds
//	SYNC_INTERVAL          background sync interval, seconds
//	HTTP_TIMEOUT           HTTP request timeout, seconds
func parseEnv(cfg *Config) {
	// missing .env is not an error, the environment alone is enough
	_ = godotenv.Load()

	if v := os.Getenv("SERVER_BASE_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("ASSET_DIR"); v != "" {
		cfg.AssetDir = v
	}
	if d, ok := envSeconds("ONLINE_CHECK_INTERVAL"); ok {
		cfg.OnlineCheckInterval = d
	}
	if d, ok := envSeconds("SYNC_INTERVAL"); ok {
		cfg.SyncInterval = d
	}
	if d, ok := envSeconds("HTTP_TIMEOUT"); ok {
		cfg.HTTPTimeout = d
	}
}

func envSeconds(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}
