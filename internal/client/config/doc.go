// Package config loads runtime configuration for the Orbit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Orbit backend
//	-t int      request timeout (seconds)
//	-d string   path to the session database file
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:8000",
//	  "request_timeout": "10s",
//	  "database_path": "orbit.db"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
