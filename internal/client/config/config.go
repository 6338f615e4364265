// Package config loads runtime configuration for the terminal client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or $DUDHIYA_CONFIG.
//  3. DUDHIYA_* environment variables; a .env file in the working
//     directory is loaded first if present.
//  4. Command-line flags.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - APIBaseURL: root of the auth backend, e.g. "http://127.0.0.1:8080".
//   - RequestTimeout: deadline of every backend call.
//   - DBPath: SQLite file holding the sealed session.
//   - DeviceSecret: extra secret mixed into the at-rest key.
//   - ResendCooldown: countdown before a code may be resent.
//   - DevServerAddr: when set, an in-process development backend is started
//     on this address and APIBaseURL points at it.
//   - LogLevel / LogDev: zap level and encoder.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DBPath         string
	DeviceSecret   string
	ResendCooldown time.Duration
	DevServerAddr  string
	LogLevel       string
	LogDev         bool
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.DBPath = "dudhiya.db"
	c.DeviceSecret = ""
	c.ResendCooldown = 60 * time.Second
	c.DevServerAddr = ""
	c.LogLevel = "warn"
	c.LogDev = true
}

// LoadConfig constructs a Config, applies defaults, then overlays the JSON
// file, the environment and the flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
