package config

import "time"

// Config holds runtime settings for the Orbit CLI.
//
// Fields:
//   - ServerBaseURL: origin of the Orbit backend, e.g. "http://localhost:8000".
//   - RequestTimeout: fixed per-request budget of the API client.
//   - DatabasePath: SQLite file holding the persisted session.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "orbit.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
