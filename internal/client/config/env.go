package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is a DTO for the environment overlay. Pointer fields
// distinguish "unset" from an explicit zero value.
type envConfig struct {
	ServerBaseURL  *string        `env:"KADRIO_SERVER_URL"`
	DatabasePath   *string        `env:"KADRIO_DB_PATH"`
	RequestTimeout *time.Duration `env:"KADRIO_REQUEST_TIMEOUT"`
	DemoMode       *bool          `env:"KADRIO_DEMO_MODE"`
}

// parseEnv overlays Config with KADRIO_-prefixed environment variables.
// Unset variables keep their earlier values. Panics on unparsable values,
// matching the JSON loader.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		panic(err)
	}

	if ec.ServerBaseURL != nil {
		cfg.ServerBaseURL = *ec.ServerBaseURL
	}
	if ec.DatabasePath != nil {
		cfg.DatabasePath = *ec.DatabasePath
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.DemoMode != nil {
		cfg.DemoMode = *ec.DemoMode
	}
}
