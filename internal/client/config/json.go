package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/kadrio/clientkit/internal/flagx"
	"github.com/kadrio/clientkit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "15s" or as integer nanoseconds. After parsing, set values are copied
// into the runtime Config.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	DatabasePath   string         `json:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DemoMode       *bool          `json:"demo_mode"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flag (flagx.JsonConfigFlags); when
// neither is given the function is a no-op. Absent fields keep their
// earlier values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.DemoMode != nil {
		cfg.DemoMode = *jc.DemoMode
	}
}
