package config

import (
	"time"

	"github.com/dmitrijs2005/barbot/internal/logging"
)

// Config holds runtime settings for the barbot CLI.
//
// Fields:
//   - ServerURL: base URL of the assistant backend (scheme://host:port).
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DataDir: directory holding the local SQLite database.
//   - LogLevel / LogBackend: diagnostics written to stderr.
//   - RenderWidth: terminal width used for chat bubbles.
//
// There is deliberately no request timeout; a call ends when the backend
// answers or the connection fails.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	DataDir             string
	LogLevel            string
	LogBackend          string
	RenderWidth         int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.OnlineCheckInterval = 5 * time.Second
	c.DataDir = ".barbot"
	c.LogLevel = "info"
	c.LogBackend = logging.BackendSlog
	c.RenderWidth = 80
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and .env), a config file (if given) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
