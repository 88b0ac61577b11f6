package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/barbot/internal/flagx"
	"github.com/dmitrijs2005/barbot/internal/timex"
)

// FileConfig is a DTO used exclusively for config file decoding.
// It relies on timex.Duration so files can specify intervals either as
// strings like "3s" or as integer nanoseconds. Only fields present in the
// file are copied into the runtime Config.
type FileConfig struct {
	ServerURL           *string         `json:"server_url" toml:"server_url"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" toml:"online_check_interval"`
	DataDir             *string         `json:"data_dir" toml:"data_dir"`
	LogLevel            *string         `json:"log_level" toml:"log_level"`
	LogBackend          *string         `json:"log_backend" toml:"log_backend"`
	RenderWidth         *int            `json:"render_width" toml:"render_width"`
}

// parseFile overlays Config with values loaded from the file named by the
// -c or -config flag. Files ending in .toml are decoded as TOML, everything
// else as JSON. With no flag the function returns without changes.
//
// Panics on read or decode errors (caller should recover if desired).
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func readFile(path string) (*FileConfig, error) {
	var fc FileConfig

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, err
		}
		return &fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.ServerURL != nil {
		cfg.ServerURL = *fc.ServerURL
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogBackend != nil {
		cfg.LogBackend = *fc.LogBackend
	}
	if fc.RenderWidth != nil {
		cfg.RenderWidth = *fc.RenderWidth
	}
}
