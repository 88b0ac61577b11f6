package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/barbot/internal/timex"
	"github.com/subosito/gotenv"
)

const (
	envServerURL           = "BARBOT_SERVER_URL"
	envDataDir             = "BARBOT_DATA_DIR"
	envLogLevel            = "BARBOT_LOG_LEVEL"
	envLogBackend          = "BARBOT_LOG_BACKEND"
	envRenderWidth         = "BARBOT_RENDER_WIDTH"
	envOnlineCheckInterval = "BARBOT_ONLINE_CHECK_INTERVAL"
)

// loadDotEnv copies variables from the given files (default ".env") into the
// process environment. Variables already set win, and a missing file is not
// an error.
func loadDotEnv(files ...string) {
	_ = gotenv.Load(files...)
}

// parseEnv overlays cfg with BARBOT_* environment variables.
// Panics on malformed numeric or duration values.
func parseEnv(cfg *Config) {
	parseEnvFrom(cfg, os.LookupEnv)
}

func parseEnvFrom(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(envServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup(envDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := lookup(envLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(envLogBackend); ok && v != "" {
		cfg.LogBackend = v
	}
	if v, ok := lookup(envRenderWidth); ok && v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", envRenderWidth, err))
		}
		cfg.RenderWidth = w
	}
	if v, ok := lookup(envOnlineCheckInterval); ok && v != "" {
		var d timex.Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			panic(fmt.Errorf("%s: %w", envOnlineCheckInterval, err))
		}
		cfg.OnlineCheckInterval = d.Duration
	}
}
