package config

import "time"

// Config holds runtime settings for the Kadrio CLI.
type Config struct {
	// ServerBaseURL is the base URL of the backend API, without a trailing
	// slash.
	ServerBaseURL string

	// DatabasePath is the SQLite file holding the persisted credential
	// store.
	DatabasePath string

	// RequestTimeout bounds each backend call.
	RequestTimeout time.Duration

	// DemoMode sources the session entirely from the local cache; no
	// backend call is ever made.
	DemoMode bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "kadrio.db"
	c.RequestTimeout = 15 * time.Second
	c.DemoMode = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
