// Package config loads runtime configuration for the barbot CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, after merging an optional .env file.
//  3. Optional JSON or TOML file selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Environment
//
//	BARBOT_SERVER_URL             base URL of the backend
//	BARBOT_ONLINE_CHECK_INTERVAL  duration, e.g. "5s"
//	BARBOT_DATA_DIR               local data directory
//	BARBOT_LOG_LEVEL              debug | info | warn | error
//	BARBOT_LOG_BACKEND            slog | zap
//	BARBOT_RENDER_WIDTH           columns
//
// Supported flags
//
//	-a string   base URL of the backend
//	-i int      online status check interval (seconds)
//	-d string   data directory
//	-l string   log level
//	-w int      render width
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "online_check_interval": "3s",
//	  "log_backend": "zap"
//	}
//
// The same keys work in TOML:
//
//	server_url = "http://127.0.0.1:8000"
//	online_check_interval = "3s"
package config
