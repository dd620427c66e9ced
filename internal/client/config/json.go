package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/soylemapp/soylem-client/internal/flagx"
	"github.com/soylemapp/soylem-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	DatabasePath        string         `json:"database_path"`
	AssetDir            string         `json:"asset_dir"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	HTTPTimeout         timex.Duration `json:"http_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.ServerBaseURL != "" {
		cfg.ServerBaseURL = c.ServerBaseURL
	}
	if c.DatabasePath != "" {
		cfg.DatabasePath = c.DatabasePath
	}
	if c.AssetDir != "" {
		cfg.AssetDir = c.AssetDir
	}
	if c.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(c.OnlineCheckInterval.Duration)
	}
	if c.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(c.SyncInterval.Duration)
	}
	if c.HTTPTimeout.Duration != 0 {
		cfg.HTTPTimeout = time.Duration(c.HTTPTimeout.Duration)
	}
}
