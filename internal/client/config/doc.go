// Package config loads runtime configuration for the Kadrio CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables with the KADRIO_ prefix (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-f string   path to the local credential database
//	-t int      request timeout (seconds)
//	-demo       run against the local cache only, no backend calls
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "15s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://api.kadrio.example",
//	  "database_path": "kadrio.db",
//	  "request_timeout": "15s",
//	  "demo_mode": false
//	}
package config
